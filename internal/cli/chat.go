package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaot623/meetagent/internal/domain"
)

// Turner answers one conversation turn.
type Turner interface {
	Turn(ctx context.Context, req domain.TurnRequest) (domain.TurnResponse, error)
}

// Conversation holds the history on the client side. The server keeps none.
type Conversation struct {
	turner  Turner
	timeout time.Duration
	history []domain.ConversationMessage
}

// NewConversation creates an empty conversation.
func NewConversation(t Turner, timeout time.Duration) *Conversation {
	return &Conversation{turner: t, timeout: timeout}
}

// History returns the messages exchanged so far.
func (c *Conversation) History() []domain.ConversationMessage {
	return c.history
}

// Say sends message with the history so far and records both sides once the
// turn succeeds.
func (c *Conversation) Say(ctx context.Context, message string) (domain.TurnResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	history := make([]domain.ConversationMessage, len(c.history))
	copy(history, c.history)
	resp, err := c.turner.Turn(ctx, domain.TurnRequest{Message: message, ConversationHistory: history})
	if err != nil {
		return domain.TurnResponse{}, err
	}

	c.history = append(c.history,
		domain.ConversationMessage{Role: domain.RoleUser, Content: message},
		domain.ConversationMessage{Role: domain.RoleAssistant, Content: resp.Response},
	)
	return resp, nil
}

// Run reads lines from in until EOF or /quit and prints every reply to out.
func (c *Conversation) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/quit":
			fmt.Fprintln(out, "Bye!")
			return nil
		case "/reset":
			c.history = nil
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		resp, err := c.Say(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, resp.Response)
		if resp.ConversationState.Collecting != domain.CollectingNone {
			fmt.Fprintf(out, "  (collecting %s)\n", resp.ConversationState.Collecting)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Run:   runChat,
	}

	cmd.Flags().Bool("http", false, "Send turns over POST /api/chat instead of WebSocket")
	cmd.Flags().Duration("timeout", 2*time.Minute, "Per-turn timeout")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	useHTTP, _ := cmd.Flags().GetBool("http")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx := cmd.Context()
	base := getServerURL()
	var turner Turner
	if useHTTP {
		turner = NewAPIClient(base)
		fmt.Printf("Using %s/api/chat\n", base)
	} else {
		addr := wsURL(base)
		fmt.Printf("Connecting to %s...\n", addr)
		client, err := DialWS(ctx, addr)
		if err != nil {
			exitErr("connect", err)
		}
		defer client.Close()
		turner = client
		fmt.Printf("Connected: %s\n", client.connectionID)
	}

	fmt.Println("\nType a message and press Enter to send.")
	fmt.Println("Commands: /reset to start over, /quit to exit")
	fmt.Println()

	if err := NewConversation(turner, timeout).Run(ctx, os.Stdin, os.Stdout); err != nil {
		exitErr("read input", err)
	}
}
