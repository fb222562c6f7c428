package domain

import "strings"

// AllGuilds is the admin-role key that applies to guilds without their own entry.
const AllGuilds = "*"

// GuildState is the durable per-guild record. Absence means defaults.
type GuildState struct {
	GuildID string
	Counter int64
	Locked  bool
}

func DefaultGuildState(guildID string) GuildState {
	return GuildState{GuildID: guildID}
}

type ComponentAction string

const (
	ActionConfirm   ComponentAction = "confirm"
	ActionIncrement ComponentAction = "increment"
	ActionInfo      ComponentAction = "info"
)

type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota + 1
	StyleSecondary
	StyleSuccess
)

// ComponentDescriptor binds a static custom id to an action. The id is what
// the platform stores in the posted widget, so it never carries session data.
type ComponentDescriptor struct {
	ID     string
	Action ComponentAction
	Label  string
	Style  ButtonStyle
}

// Response is what a handler asks the adapter to deliver.
type Response struct {
	Content    string
	Ephemeral  bool
	Components []ComponentDescriptor
	// UpdateMessage edits the message that carried the clicked component
	// instead of posting a new one.
	UpdateMessage bool
}

func Reply(content string) Response     { return Response{Content: content} }
func Ephemeral(content string) Response { return Response{Content: content, Ephemeral: true} }

type Scope struct {
	GuildID string
}

var GlobalScope = Scope{}

func GuildScope(guildID string) Scope { return Scope{GuildID: guildID} }

func (s Scope) IsGlobal() bool { return s.GuildID == "" }

func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "guild:" + s.GuildID
}

type OptionType int

const (
	OptionString OptionType = iota + 1
	OptionInteger
	OptionBoolean
	// OptionRole carries a role id; on the prefix surface a role mention.
	OptionRole
)

type OptionDef struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
	// Choices restricts a string option to fixed values.
	Choices []string
}

// CommandDefinition is the statically declared shape of a command.
type CommandDefinition struct {
	Name           string
	Description    string
	Scope          Scope
	Options        []OptionDef
	AdminOnly      bool
	GuildOnly      bool
	StructuredOnly bool
	// Private commands always answer privately on the structured surface.
	Private bool
	// AdminArgs marks commands that consult the admin gate for some of their
	// arguments, so the actor's manage-guild permission must be known.
	AdminArgs bool
}

// NeedsPermissions reports whether dispatch needs the actor's manage-guild
// permission for this command.
func (d CommandDefinition) NeedsPermissions() bool { return d.AdminOnly || d.AdminArgs }

func (d CommandDefinition) Key() string {
	return d.Scope.String() + "/" + strings.ToLower(d.Name)
}

// OptionIndex returns the declared position of the named option, or -1.
func (d CommandDefinition) OptionIndex(name string) int {
	for i, o := range d.Options {
		if o.Name == name {
			return i
		}
	}
	return -1
}
