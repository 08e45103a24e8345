package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Era is a reference-data era row
type Era struct {
	Slug        string
	Name        string
	StartYear   int
	EndYear     *int
	Description string
}

func yearPtr(y int) *int { return &y }

// Eras is the standard era timeline, seeded before any unit import
var Eras = []Era{
	{"age-of-war", "Age of War", 2398, yearPtr(2570), "The period of interstellar warfare that preceded the Star League."},
	{"star-league", "Star League", 2571, yearPtr(2780), "The golden age of humanity spanning the Star League era."},
	{"early-succession-wars", "Early Succession Wars", 2781, yearPtr(2900), "The First and Second Succession Wars; rapid technological decline."},
	{"late-succession-wars", "Late Succession Wars (LosTech)", 2901, yearPtr(3019), "Era of LosTech; Third and early Fourth Succession Wars."},
	{"renaissance", "Renaissance", 3020, yearPtr(3049), "Technological renaissance; Helm Memory Core; Fourth Succession War."},
	{"clan-invasion", "Clan Invasion", 3050, yearPtr(3061), "Clan forces attack the Inner Sphere; Operation Revival."},
	{"civil-war", "Civil War", 3062, yearPtr(3067), "FedCom Civil War; growing tensions across the Inner Sphere."},
	{"jihad", "Jihad", 3068, yearPtr(3080), "Word of Blake Jihad; widespread destruction across known space."},
	{"dark-age", "Dark Age", 3081, yearPtr(3150), "The Republic era and the collapse of HPG communications."},
	{"ilclan", "ilClan", 3151, nil, "Recognition of a new ilClan; reshaping of the Inner Sphere."},
}

// Faction is a reference-data faction row
type Faction struct {
	Slug      string
	Name      string
	ShortName string
	Type      string
	IsClan    bool
}

// Factions is the standard faction set, seeded before any unit import
var Factions = []Faction{
	// Inner Sphere Great Houses
	{"steiner", "Lyran Commonwealth", "LC", "great_house", false},
	{"davion", "Federated Suns", "FS", "great_house", false},
	{"kurita", "Draconis Combine", "DC", "great_house", false},
	{"marik", "Free Worlds League", "FWL", "great_house", false},
	{"liao", "Capellan Confederation", "CC", "great_house", false},
	// Star League and successors
	{"star-league", "Star League", "SL", "star_league", false},
	{"comstar", "ComStar", "CS", "independent", false},
	{"word-of-blake", "Word of Blake", "WoB", "independent", false},
	{"republic", "Republic of the Sphere", "RS", "inner_sphere", false},
	// Clans
	{"clan-wolf", "Clan Wolf", "CW", "clan", true},
	{"clan-jade-falcon", "Clan Jade Falcon", "CJF", "clan", true},
	{"clan-ghost-bear", "Clan Ghost Bear", "CGB", "clan", true},
	{"clan-smoke-jaguar", "Clan Smoke Jaguar", "CSJ", "clan", true},
	{"clan-nova-cat", "Clan Nova Cat", "CNC", "clan", true},
	{"clan-steel-viper", "Clan Steel Viper", "CSV", "clan", true},
	{"clan-diamond-shark", "Clan Diamond Shark", "CDS", "clan", true},
	{"clan-goliath-scorpion", "Clan Goliath Scorpion", "CGS", "clan", true},
	{"clan-ice-hellion", "Clan Ice Hellion", "CIH", "clan", true},
	{"clan-star-adder", "Clan Star Adder", "CSA", "clan", true},
	{"clan-hell-horses", "Clan Hell's Horses", "CHH", "clan", true},
	{"clan-blood-spirit", "Clan Blood Spirit", "CBS", "clan", true},
	{"clan-coyote", "Clan Coyote", "CCY", "clan", true},
	{"clan-fire-mandrill", "Clan Fire Mandrill", "CFM", "clan", true},
	{"clan-mongoose", "Clan Mongoose", "CMG", "clan", true},
	{"clan-widowmaker", "Clan Widowmaker", "CWM", "clan", true},
	{"clan-wolverine", "Clan Wolverine", "CWOV", "clan", true},
	// Periphery
	{"periphery-general", "Periphery (General)", "PER", "periphery", false},
	{"taurian-concordat", "Taurian Concordat", "TC", "periphery", false},
	{"magistracy-canopus", "Magistracy of Canopus", "MOC", "periphery", false},
	{"outworlds-alliance", "Outworlds Alliance", "OA", "periphery", false},
	{"marian-hegemony", "Marian Hegemony", "MH", "periphery", false},
	// Mercenaries / General
	{"mercenary", "Mercenary", "MER", "mercenary", false},
	{"general", "General (All)", "GEN", "general", false},
}

// SeedStore seeds reference data (eras, factions, dataset metadata)
type SeedStore struct {
	db *sql.DB
}

// NewSeedStore creates a new SeedStore
func NewSeedStore(db *sql.DB) *SeedStore {
	return &SeedStore{db: db}
}

// SeedEras inserts any missing era rows; existing rows are untouched.
// Returns the number of rows inserted.
func (s *SeedStore) SeedEras(ctx context.Context) (int, error) {
	query := `
		INSERT INTO eras (slug, name, start_year, end_year, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO NOTHING
	`

	count := 0
	for _, era := range Eras {
		result, err := s.db.ExecContext(ctx, query, era.Slug, era.Name, era.StartYear, era.EndYear, era.Description)
		if err != nil {
			return count, fmt.Errorf("failed to seed era %s: %w", era.Slug, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			count += int(n)
		}
	}
	return count, nil
}

// SeedFactions inserts any missing faction rows; existing rows are
// untouched. Returns the number of rows inserted.
func (s *SeedStore) SeedFactions(ctx context.Context) (int, error) {
	query := `
		INSERT INTO factions (slug, name, short_name, faction_type, is_clan)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO NOTHING
	`

	count := 0
	for _, f := range Factions {
		result, err := s.db.ExecContext(ctx, query, f.Slug, f.Name, f.ShortName, f.Type, f.IsClan)
		if err != nil {
			return count, fmt.Errorf("failed to seed faction %s: %w", f.Slug, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			count += int(n)
		}
	}
	return count, nil
}

// SeedMetadata records the dataset version this import came from,
// replacing any previous record for the same version.
func (s *SeedStore) SeedMetadata(ctx context.Context, version string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM dataset_metadata WHERE version = $1", version); err != nil {
		return fmt.Errorf("failed to clear dataset metadata: %w", err)
	}

	query := `
		INSERT INTO dataset_metadata (version, schema_version, description)
		VALUES ($1, 1, 'Imported from MegaMek ' || $1)
	`
	if _, err := s.db.ExecContext(ctx, query, version); err != nil {
		return fmt.Errorf("failed to insert dataset metadata: %w", err)
	}
	return nil
}
