package platforms

// Platform identifiers stored in game records, gamertags and sessions.
const (
	PC          = "pc"
	PlayStation = "playstation"
	Xbox        = "xbox"
	Switch      = "switch"
	Mobile      = "mobile"
)

var displayNames = map[string]string{
	PC:          "PC",
	PlayStation: "PlayStation",
	Xbox:        "Xbox",
	Switch:      "Nintendo Switch",
	Mobile:      "Mobile",
}

// IsValid reports whether the given platform identifier is one we know
// about. The empty string is not valid here; callers that treat the
// platform as optional check for it before calling.
func IsValid(platform string) bool {
	_, ok := displayNames[platform]
	return ok
}

// DisplayName resolves a platform identifier to its user-facing name.
// Unknown identifiers are returned as-is so old records keep rendering.
func DisplayName(platform string) string {
	if name, ok := displayNames[platform]; ok {
		return name
	}
	return platform
}

// All returns every known platform identifier.
func All() []string {
	return []string{PC, PlayStation, Xbox, Switch, Mobile}
}
