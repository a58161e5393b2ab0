package whatsapp

import "strings"

const (
	DefaultGreeting  = "Hello 👋,\nHope you're doing well! 😊"
	DefaultSignature = "Thank you\n- Cybercity"
)

// Template wraps a broadcast body with a fixed greeting and closing signature.
type Template struct {
	Greeting  string
	Signature string
}

func (t Template) Render(body string) string {
	parts := make([]string, 0, 3)
	if t.Greeting != "" {
		parts = append(parts, t.Greeting)
	}
	parts = append(parts, strings.TrimSpace(body))
	if t.Signature != "" {
		parts = append(parts, t.Signature)
	}
	return strings.Join(parts, "\n\n")
}
