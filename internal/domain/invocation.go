package domain

import (
	"strconv"
	"strings"
)

type Surface string

const (
	SurfacePrefix     Surface = "prefix"
	SurfaceStructured Surface = "structured"
)

type ArgKind int

const (
	ArgNull ArgKind = iota
	ArgString
	ArgInt
	ArgBool
)

// Arg is one positional argument. Text tokens are always ArgString; structured
// options keep their native kind. Accessors coerce so both read the same.
type Arg struct {
	Kind ArgKind
	str  string
	num  int64
	flag bool
}

func StringArg(s string) Arg { return Arg{Kind: ArgString, str: s} }
func IntArg(n int64) Arg     { return Arg{Kind: ArgInt, num: n} }
func BoolArg(b bool) Arg     { return Arg{Kind: ArgBool, flag: b} }
func NullArg() Arg           { return Arg{Kind: ArgNull} }

func (a Arg) String() string {
	switch a.Kind {
	case ArgString:
		return a.str
	case ArgInt:
		return strconv.FormatInt(a.num, 10)
	case ArgBool:
		return strconv.FormatBool(a.flag)
	}
	return ""
}

func (a Arg) Int() (int64, bool) {
	switch a.Kind {
	case ArgInt:
		return a.num, true
	case ArgString:
		n, err := strconv.ParseInt(strings.TrimSpace(a.str), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func (a Arg) Bool() (bool, bool) {
	switch a.Kind {
	case ArgBool:
		return a.flag, true
	case ArgInt:
		return a.num != 0, true
	case ArgString:
		switch strings.ToLower(strings.TrimSpace(a.str)) {
		case "true", "yes", "y", "on", "1":
			return true, true
		case "false", "no", "n", "off", "0":
			return false, true
		}
	}
	return false, false
}

// RoleID reads a role id from a raw snowflake or a <@&id> mention.
func (a Arg) RoleID() (string, bool) {
	if a.Kind != ArgString {
		return "", false
	}
	id := strings.TrimSpace(a.str)
	if strings.HasPrefix(id, "<@&") && strings.HasSuffix(id, ">") {
		id = id[3 : len(id)-1]
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", false
	}
	return id, true
}

// Invocation is the canonical call shape shared by both surfaces.
type Invocation struct {
	ActorID   string
	GuildID   string
	ChannelID string
	Surface   Surface
	Command   string
	Args      []Arg

	// Actor context supplied by the platform, consumed by authorization.
	Roles          []string
	CanManageGuild bool

	TraceID string
}

// Arg returns the i-th argument or a null Arg when absent.
func (inv Invocation) Arg(i int) Arg {
	if i < 0 || i >= len(inv.Args) {
		return NullArg()
	}
	return inv.Args[i]
}

func (inv Invocation) InGuild() bool { return inv.GuildID != "" }
