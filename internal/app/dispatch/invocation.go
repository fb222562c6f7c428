package dispatch

import (
	"strings"
	"unicode"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

// Actor is the surface-independent part of an inbound event.
type Actor struct {
	UserID         string
	GuildID        string
	ChannelID      string
	Roles          []string
	CanManageGuild bool
	TraceID        string
}

// NamedArg is a structured option as delivered by the platform.
type NamedArg struct {
	Name  string
	Value domain.Arg
}

func (a Actor) invocation(surface domain.Surface, name string, args []domain.Arg) domain.Invocation {
	return domain.Invocation{
		ActorID:        a.UserID,
		GuildID:        a.GuildID,
		ChannelID:      a.ChannelID,
		Surface:        surface,
		Command:        strings.ToLower(name),
		Args:           args,
		Roles:          append([]string(nil), a.Roles...),
		CanManageGuild: a.CanManageGuild,
		TraceID:        a.TraceID,
	}
}

// FromText converts a prefixed chat message. ok is false when the message does
// not start with prefix or carries no command token.
func FromText(a Actor, prefix, content string) (domain.Invocation, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return domain.Invocation{}, false
	}
	rest := strings.TrimPrefix(content, prefix)
	if rest == "" || unicode.IsSpace(rune(rest[0])) {
		return domain.Invocation{}, false
	}
	tokens := Tokenize(rest)
	if len(tokens) == 0 {
		return domain.Invocation{}, false
	}
	args := make([]domain.Arg, 0, len(tokens)-1)
	for _, t := range tokens[1:] {
		args = append(args, domain.StringArg(t))
	}
	return a.invocation(domain.SurfacePrefix, tokens[0], args), true
}

// FromStructured orders named options by the definition's declared order.
// Trailing absent options are dropped; absent options before a present one
// become null placeholders so positions stay stable.
func FromStructured(a Actor, def domain.CommandDefinition, opts []NamedArg) domain.Invocation {
	slots := make([]domain.Arg, len(def.Options))
	last := -1
	for _, o := range opts {
		i := def.OptionIndex(o.Name)
		if i < 0 {
			continue
		}
		slots[i] = o.Value
		if i > last {
			last = i
		}
	}
	return a.invocation(domain.SurfaceStructured, def.Name, slots[:last+1])
}

// Tokenize splits on whitespace. A double-quoted run is one token with the
// quotes removed, a backslash escapes the next rune, and an unterminated
// quote runs to the end of input.
func Tokenize(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			started = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}
