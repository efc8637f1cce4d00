package cards

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hogwartsbattle/hogwarts-engine-go/internal/game/effects"
)

//go:embed data/*.yaml
var embeddedCatalog embed.FS

// Embedded returns the built-in catalog.
func Embedded() fs.FS {
	sub, err := fs.Sub(embeddedCatalog, "data")
	if err != nil {
		// data/ is compiled in, so Sub cannot fail.
		panic(err)
	}
	return sub
}

// catalogFile is the document shape of one catalog YAML file.
type catalogFile struct {
	Cards         []*Card        `yaml:"cards"`
	Heroes        []*Hero        `yaml:"heroes"`
	Proficiencies []*Proficiency `yaml:"proficiencies"`
	Dice          []*Die         `yaml:"dice"`
	Years         []*Year        `yaml:"years"`
}

// Registry is the read-only index of templates, loaded on first use.
type Registry struct {
	source fs.FS
	name   string
	logger *zap.Logger

	once    sync.Once
	loadErr error

	cards         map[string]*Card
	heroes        map[string]*Hero
	proficiencies map[string]*Proficiency
	dice          map[string]*Die
	years         map[string]*Year
}

// NewRegistry creates a registry over every *.yaml file in source.
func NewRegistry(source fs.FS, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		source: source,
		name:   "catalog",
		logger: logger,
	}
}

// NewEmbeddedRegistry creates a registry over the built-in catalog.
func NewEmbeddedRegistry(logger *zap.Logger) *Registry {
	r := NewRegistry(Embedded(), logger)
	r.name = "embedded"
	return r
}

// Open returns a registry over dir, or over the built-in catalog when dir is empty.
func Open(dir string, logger *zap.Logger) *Registry {
	if strings.TrimSpace(dir) == "" {
		return NewEmbeddedRegistry(logger)
	}
	r := NewRegistry(os.DirFS(dir), logger)
	r.name = dir
	return r
}

// Err loads the catalog if needed and reports a failure that left it empty.
func (r *Registry) Err() error {
	r.load()
	return r.loadErr
}

// Card returns the card template with the given id.
func (r *Registry) Card(id string) (*Card, error) {
	r.load()
	if c, ok := r.cards[id]; ok {
		return c, nil
	}
	return nil, &NotFoundError{Kind: "card", ID: id}
}

// Cards looks up a list of ids, failing on the first unknown one.
func (r *Registry) Cards(ids []string) ([]*Card, error) {
	out := make([]*Card, 0, len(ids))
	for _, id := range ids {
		c, err := r.Card(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Hero returns the hero template with the given id.
func (r *Registry) Hero(id string) (*Hero, error) {
	r.load()
	if h, ok := r.heroes[id]; ok {
		return h, nil
	}
	return nil, &NotFoundError{Kind: "hero", ID: id}
}

// Proficiency returns the proficiency template with the given id.
func (r *Registry) Proficiency(id string) (*Proficiency, error) {
	r.load()
	if p, ok := r.proficiencies[id]; ok {
		return p, nil
	}
	return nil, &NotFoundError{Kind: "proficiency", ID: id}
}

// Die returns the die template with the given id.
func (r *Registry) Die(id string) (*Die, error) {
	r.load()
	if d, ok := r.dice[id]; ok {
		return d, nil
	}
	return nil, &NotFoundError{Kind: "die", ID: id}
}

// Year returns the year template with the given id.
func (r *Registry) Year(id string) (*Year, error) {
	r.load()
	if y, ok := r.years[id]; ok {
		return y, nil
	}
	return nil, &NotFoundError{Kind: "year", ID: id}
}

// Years lists the loaded year ids in order.
func (r *Registry) Years() []string {
	r.load()
	return sortedKeys(r.years)
}

// Heroes lists the loaded hero ids in order.
func (r *Registry) Heroes() []string {
	r.load()
	return sortedKeys(r.heroes)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) load() {
	r.once.Do(func() {
		r.cards = make(map[string]*Card)
		r.heroes = make(map[string]*Hero)
		r.proficiencies = make(map[string]*Proficiency)
		r.dice = make(map[string]*Die)
		r.years = make(map[string]*Year)

		docs, err := r.readAll()
		if err != nil {
			r.loadErr = err
			r.logger.Error("catalog unavailable", zap.String("source", r.name), zap.Error(err))
			return
		}
		r.index(docs)

		if len(r.cards) == 0 && len(r.heroes) == 0 && len(r.years) == 0 {
			r.loadErr = &ConfigLoadError{Source: r.name, Err: errors.New("no usable entries")}
		}
		r.logger.Info("catalog loaded",
			zap.String("source", r.name),
			zap.Int("cards", len(r.cards)),
			zap.Int("heroes", len(r.heroes)),
			zap.Int("proficiencies", len(r.proficiencies)),
			zap.Int("dice", len(r.dice)),
			zap.Int("years", len(r.years)),
		)
	})
}

// readAll decodes every catalog file, skipping the malformed ones.
func (r *Registry) readAll() ([]*catalogFile, error) {
	if r.source == nil {
		return nil, &ConfigLoadError{Source: r.name, Err: errors.New("no catalog source")}
	}
	names, err := fs.Glob(r.source, "*.yaml")
	if err != nil {
		return nil, &ConfigLoadError{Source: r.name, Err: err}
	}
	if len(names) == 0 {
		return nil, &ConfigLoadError{Source: r.name, Err: fs.ErrNotExist}
	}
	sort.Strings(names)

	docs := make([]*catalogFile, 0, len(names))
	for _, name := range names {
		doc, err := r.readFile(name)
		if err != nil {
			r.logger.Warn("skipping catalog file", zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *Registry) readFile(name string) (*catalogFile, error) {
	raw, err := fs.ReadFile(r.source, name)
	if err != nil {
		return nil, &ConfigLoadError{Source: path.Join(r.name, name), Err: err}
	}
	var doc catalogFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &ConfigLoadError{Source: path.Join(r.name, name), Err: err}
	}
	return &doc, nil
}

// index fills the maps. Cards and dice go first so heroes, proficiencies and
// years can be checked against them.
func (r *Registry) index(docs []*catalogFile) {
	for _, doc := range docs {
		for _, c := range doc.Cards {
			if c == nil {
				continue
			}
			if err := c.Validate(); err != nil {
				r.logger.Warn("skipping card", zap.String("card", c.ID), zap.Error(err))
				continue
			}
			if r.duplicate("card", c.ID, r.cards[c.ID] != nil) {
				continue
			}
			r.cards[c.ID] = c
		}
		for _, d := range doc.Dice {
			if d == nil {
				continue
			}
			if err := r.validateDie(d); err != nil {
				r.logger.Warn("skipping die", zap.String("die", d.ID), zap.Error(err))
				continue
			}
			if r.duplicate("die", d.ID, r.dice[d.ID] != nil) {
				continue
			}
			r.dice[d.ID] = d
		}
	}

	for _, doc := range docs {
		for _, p := range doc.Proficiencies {
			if p == nil {
				continue
			}
			if err := r.validateProficiency(p); err != nil {
				r.logger.Warn("skipping proficiency", zap.String("proficiency", p.ID), zap.Error(err))
				continue
			}
			if r.duplicate("proficiency", p.ID, r.proficiencies[p.ID] != nil) {
				continue
			}
			r.proficiencies[p.ID] = p
		}
		for _, h := range doc.Heroes {
			if h == nil || strings.TrimSpace(h.ID) == "" {
				r.logger.Warn("skipping hero without id")
				continue
			}
			h.StartingDeck = r.knownIDs("hero", h.ID, h.StartingDeck, nil)
			if len(h.StartingDeck) == 0 {
				r.logger.Warn("skipping hero with empty starting deck", zap.String("hero", h.ID))
				continue
			}
			if r.duplicate("hero", h.ID, r.heroes[h.ID] != nil) {
				continue
			}
			r.heroes[h.ID] = h
		}
		for _, y := range doc.Years {
			if y == nil || strings.TrimSpace(y.ID) == "" {
				r.logger.Warn("skipping year without id")
				continue
			}
			r.indexYear(y)
		}
	}
}

func (r *Registry) indexYear(y *Year) {
	y.Villains = r.knownIDs("year", y.ID, y.Villains, isKind(KindVillain))
	y.DarkArts = r.knownIDs("year", y.ID, y.DarkArts, isKind(KindDarkArts))
	y.Shop = r.knownIDs("year", y.ID, y.Shop, func(c *Card) bool { return c.Kind.Playable() })
	y.Locations = r.knownIDs("year", y.ID, y.Locations, isKind(KindLocation))
	y.Horcruxes = r.knownIDs("year", y.ID, y.Horcruxes, isKind(KindHorcrux))

	if len(y.Villains) == 0 || len(y.Locations) == 0 {
		r.logger.Warn("skipping year without villains or locations", zap.String("year", y.ID))
		return
	}
	if y.Mechanics.Horcruxes && len(y.Horcruxes) == 0 {
		r.logger.Warn("year enables horcruxes but lists none", zap.String("year", y.ID))
	}
	if r.duplicate("year", y.ID, r.years[y.ID] != nil) {
		return
	}
	r.years[y.ID] = y
}

func isKind(k Kind) func(*Card) bool {
	return func(c *Card) bool { return c.Kind == k }
}

// knownIDs drops references to missing or mis-kinded cards, logging each one.
func (r *Registry) knownIDs(owner, ownerID string, ids []string, accept func(*Card) bool) []string {
	kept := ids[:0]
	for _, id := range ids {
		c, ok := r.cards[id]
		switch {
		case !ok:
			r.logger.Warn("skipping missing card reference",
				zap.String(owner, ownerID), zap.String("card", id))
		case accept != nil && !accept(c):
			r.logger.Warn("skipping card of wrong kind",
				zap.String(owner, ownerID), zap.String("card", id), zap.String("kind", string(c.Kind)))
		default:
			kept = append(kept, id)
		}
	}
	return kept
}

func (r *Registry) duplicate(kind, id string, exists bool) bool {
	if exists {
		r.logger.Warn("duplicate id, keeping the first", zap.String("kind", kind), zap.String("id", id))
	}
	return exists
}

func (r *Registry) validateDie(d *Die) error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("die id is required")
	}
	if len(d.Faces) != 6 {
		return fmt.Errorf("die %s has %d faces, want 6", d.ID, len(d.Faces))
	}
	for i, face := range d.Faces {
		if err := face.Validate(); err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
	}
	return nil
}

func (r *Registry) validateProficiency(p *Proficiency) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("proficiency id is required")
	}
	if len(p.Effects) == 0 && len(p.Triggers) == 0 {
		return fmt.Errorf("proficiency %s has neither effects nor triggers", p.ID)
	}
	if err := effects.ValidateAll(p.Effects); err != nil {
		return err
	}
	for i, trig := range p.Triggers {
		if err := trig.Validate(); err != nil {
			return fmt.Errorf("trigger %d: %w", i, err)
		}
	}
	return nil
}
