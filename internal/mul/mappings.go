package mul

import "strings"

// EraMappings maps MUL era display names to local era slugs. The MUL
// splits some eras more finely than we track (Early/Late Republic fold
// into Dark Age).
func EraMappings() map[string]string {
	return map[string]string{
		"Age of War":                       "age-of-war",
		"Star League":                      "star-league",
		"Early Succession War":             "early-succession-wars",
		"Early Succession Wars":            "early-succession-wars",
		"Late Succession War - LosTech":    "late-succession-wars",
		"Late Succession War - Renaissance": "renaissance",
		"Clan Invasion":                    "clan-invasion",
		"Civil War":                        "civil-war",
		"Jihad":                            "jihad",
		"Dark Age":                         "dark-age",
		"Early Republic":                   "dark-age",
		"Late Republic":                    "dark-age",
		"ilClan":                           "ilclan",
	}
}

// FactionMappings maps MUL faction display names to local faction
// slugs, covering the seeded faction set. Successor and renamed
// polities collapse onto one slug (Lyran Alliance -> steiner,
// Clan Sea Fox -> clan-diamond-shark).
func FactionMappings() map[string]string {
	return map[string]string{
		// Inner Sphere Great Houses
		"Lyran Commonwealth":     "steiner",
		"Lyran Alliance":         "steiner",
		"Federated Suns":         "davion",
		"Federated Commonwealth": "davion",
		"Draconis Combine":       "kurita",
		"Free Worlds League":     "marik",
		"Capellan Confederation": "liao",
		// Star League and successors
		"Star League Regular":     "star-league",
		"Star League Royal":       "star-league",
		"Star League":             "star-league",
		"ComStar":                 "comstar",
		"Word of Blake":           "word-of-blake",
		"Republic of the Sphere":  "republic",
		// Clans
		"Clan Wolf":              "clan-wolf",
		"Clan Wolf (in Exile)":   "clan-wolf",
		"Clan Jade Falcon":       "clan-jade-falcon",
		"Clan Ghost Bear":        "clan-ghost-bear",
		"Rasalhague Dominion":    "clan-ghost-bear",
		"Clan Smoke Jaguar":      "clan-smoke-jaguar",
		"Clan Nova Cat":          "clan-nova-cat",
		"Clan Steel Viper":       "clan-steel-viper",
		"Clan Diamond Shark":     "clan-diamond-shark",
		"Clan Sea Fox":           "clan-diamond-shark",
		"Clan Goliath Scorpion":  "clan-goliath-scorpion",
		"Clan Ice Hellion":       "clan-ice-hellion",
		"Clan Star Adder":        "clan-star-adder",
		"Clan Hell's Horses":     "clan-hell-horses",
		"Clan Blood Spirit":      "clan-blood-spirit",
		"Clan Coyote":            "clan-coyote",
		"Clan Fire Mandrill":     "clan-fire-mandrill",
		"Clan Mongoose":          "clan-mongoose",
		"Clan Widowmaker":        "clan-widowmaker",
		"Clan Wolverine":         "clan-wolverine",
		// Periphery
		"Taurian Concordat":    "taurian-concordat",
		"Magistracy of Canopus": "magistracy-canopus",
		"Outworlds Alliance":   "outworlds-alliance",
		"Marian Hegemony":      "marian-hegemony",
		// General
		"Inner Sphere General": "general",
		"Clan General":         "general",
		"Mercenary":            "mercenary",
	}
}

// InferFactionType guesses a faction type for auto-created factions
// that have no mapping.
func InferFactionType(name string) string {
	switch {
	case strings.HasPrefix(name, "Clan "):
		return "clan"
	case containsAny(name, "Periphery", "Concordat", "Canopus", "Alliance", "Hegemony", "Magistracy"):
		return "periphery"
	case containsAny(name, "Mercenary", "mercenary"):
		return "mercenary"
	default:
		return "other"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
