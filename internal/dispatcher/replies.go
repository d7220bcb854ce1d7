package dispatcher

import (
	"fmt"
	"strings"

	"github.com/monosms/sms-agent/internal/model"
	"github.com/monosms/sms-agent/internal/resolver"
)

const swapUsageReply = `❌ Invalid swap command. Format: SWAP <amount> <token> TO <token>
Example: SWAP 0.001 USDT TO MON`

const sendUsageReply = `❌ Invalid send command. Format: SEND <amount> <token> TO <address>
Example: SEND 0.001 USDT TO 0x1234...abcd`

const invalidRecipientReply = `❌ Invalid recipient address. Must be a valid Ethereum address (0x...) or ENS name (.eth).`

const unknownCommandReply = `❌ Unknown command. Try: SWAP 1 USDT TO MON, or SEND 1 USDT TO wallet.eth`

func unsupportedTokenReply(symbols []string) string {
	return "❌ Unsupported token. Supported tokens: " + strings.Join(symbols, ", ")
}

func swapSuccessReply(amount string, from, to model.Token, taskID string) string {
	return fmt.Sprintf(`✅ Swap executed successfully!

%s %s → %s
%s %s → %s %s

Transaction ID: %s`,
		amount, from.Symbol, to.Symbol,
		from.Logo, from.Name, to.Logo, to.Name,
		orPending(taskID))
}

func swapFailureReply(err error) string {
	return fmt.Sprintf(`❌ Swap failed: %v

Please try again or check your balance.`, err)
}

func sendSuccessReply(amount string, tok model.Token, resolved, original, taskID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `✅ Send executed successfully!

%s %s %s %s
To: %s`,
		amount, tok.Symbol, tok.Logo, tok.Name, truncateAddress(resolved))
	if resolver.IsName(original) {
		fmt.Fprintf(&b, "\nENS: %s", original)
	}
	fmt.Fprintf(&b, "\n\nTransaction ID: %s", orPending(taskID))
	return b.String()
}

func sendFailureReply(err error) string {
	return fmt.Sprintf(`❌ Send failed: %v

Please try again or check your balance.`, err)
}

func orPending(taskID string) string {
	if taskID == "" {
		return "Pending"
	}
	return taskID
}

// truncateAddress keeps the first 10 and last 4 characters for display.
func truncateAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:10] + "..." + addr[len(addr)-4:]
}
