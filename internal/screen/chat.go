package screen

import (
	"strconv"
	"strings"

	"github.com/hobbs-bbs/hobbs/internal/chat"
)

// runChat is the Chat-state entry handler: joins the process-wide chat
// room, replays recent history, then loops reading lines and
// broadcasting them, draining any messages delivered by other sessions
// before each prompt. A worker never yields to another goroutine
// mid-handler, so incoming messages are drained opportunistically
// rather than delivered the instant they arrive.
func runChat(c *ScreenContext) (ScreenResult, error) {
	handle := chatHandle(c)
	inbound := c.Deps.Chat.Join(c.Sess.ID, handle)
	defer c.Deps.Chat.Leave(c.Sess.ID)

	c.Deps.Chat.Announce(handle + " has joined the chat.")

	if err := c.SendLine("\n=== Chat === ([Q] to leave)"); err != nil {
		return Back(), err
	}
	for _, m := range c.Deps.Chat.History() {
		if err := c.SendLine(formatChatMessage(m)); err != nil {
			return Back(), err
		}
	}

	for {
		if err := drainChatMessages(c, inbound); err != nil {
			return Back(), err
		}
		if err := c.Send("> "); err != nil {
			return Back(), err
		}
		line, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}
		trimmed := strings.TrimSpace(line)
		if strings.EqualFold(trimmed, "Q") {
			c.Deps.Chat.Announce(handle + " has left the chat.")
			return Back(), nil
		}
		if trimmed == "" {
			continue
		}
		c.Deps.Chat.Speak(c.Sess.ID, handle, trimmed)
	}
}

// drainChatMessages flushes any messages already buffered on inbound
// without blocking, since a worker must never suspend waiting on
// another session's chat activity mid-loop.
func drainChatMessages(c *ScreenContext, inbound <-chan chat.Message) error {
	for {
		select {
		case m, ok := <-inbound:
			if !ok {
				return nil
			}
			if err := c.SendLine(formatChatMessage(m)); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func formatChatMessage(m chat.Message) string {
	if m.IsSystem {
		return "* " + m.Text
	}
	return "<" + m.Handle + "> " + m.Text
}

func chatHandle(c *ScreenContext) string {
	if c.Sess.Username != "" {
		return c.Sess.Username
	}
	return "Guest" + strconv.Itoa(c.Sess.ID)
}
