package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/haytac/message-formatter/internal/database"
)

// catalogDocument is the YAML layout used by catalog import and export.
type catalogDocument struct {
	Rooms        []catalogRoom  `yaml:"rooms,omitempty"`
	Emotes       []catalogEmote `yaml:"emotes,omitempty"`
	Replacements []catalogRule  `yaml:"replacements,omitempty"`
}

type catalogRoom struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name,omitempty"`
}

type catalogEmote struct {
	Key      string `yaml:"key"`
	ImageURL string `yaml:"image_url"`
	Size     int    `yaml:"size,omitempty"`
}

type catalogRule struct {
	Pattern  string `yaml:"pattern"`
	Template string `yaml:"template"`
	Position *int   `yaml:"position,omitempty"`
}

// NewCatalogCmd creates the catalog command.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Import or export rooms, emotes and replacement rules as YAML",
	}
	cmd.AddCommand(newCatalogImportCmd(), newCatalogExportCmd())
	return cmd
}

func newCatalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a YAML catalog; use - for standard input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open catalog file: %w", err)
				}
				defer f.Close()
				r = f
			}
			doc, err := decodeCatalog(r)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			rooms, emotes, rules := doc.records()
			if err := database.NewCatalogStore(db).Import(cmd.Context(), rooms, emotes, rules); err != nil {
				return fmt.Errorf("catalog import failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rooms, %d emotes, %d replacement rules.\n",
				len(rooms), len(emotes), len(rules))
			return nil
		},
	}
}

func newCatalogExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the stored catalog to standard output as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			doc, err := loadCatalog(cmd.Context(), db)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("failed to encode catalog: %w", err)
			}
			return enc.Close()
		},
	}
}

func decodeCatalog(r io.Reader) (*catalogDocument, error) {
	var doc catalogDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &doc, nil
}

// records converts the document into store records. Rules without an
// explicit position keep their order in the file.
func (d *catalogDocument) records() ([]*database.Room, []*database.Emote, []*database.ReplacementRule) {
	rooms := make([]*database.Room, 0, len(d.Rooms))
	for _, r := range d.Rooms {
		room := &database.Room{Slug: r.Slug}
		if r.Name != "" {
			name := r.Name
			room.Name = &name
		}
		rooms = append(rooms, room)
	}

	emotes := make([]*database.Emote, 0, len(d.Emotes))
	for _, e := range d.Emotes {
		emote := &database.Emote{Key: e.Key, ImageURL: e.ImageURL}
		if e.Size != 0 {
			size := e.Size
			emote.Size = &size
		}
		emotes = append(emotes, emote)
	}

	rules := make([]*database.ReplacementRule, 0, len(d.Replacements))
	for i, r := range d.Replacements {
		pos := i
		if r.Position != nil {
			pos = *r.Position
		}
		rules = append(rules, &database.ReplacementRule{Position: pos, Pattern: r.Pattern, Template: r.Template})
	}
	return rooms, emotes, rules
}

func loadCatalog(ctx context.Context, db *database.DB) (*catalogDocument, error) {
	rooms, err := database.NewRoomStore(db).ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	emotes, err := database.NewEmoteStore(db).ListEmotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list emotes: %w", err)
	}
	rules, err := database.NewReplacementRuleStore(db).ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	doc := &catalogDocument{}
	for _, r := range rooms {
		cr := catalogRoom{Slug: r.Slug}
		if r.Name != nil {
			cr.Name = *r.Name
		}
		doc.Rooms = append(doc.Rooms, cr)
	}
	for _, e := range emotes {
		ce := catalogEmote{Key: e.Key, ImageURL: e.ImageURL}
		if e.Size != nil {
			ce.Size = *e.Size
		}
		doc.Emotes = append(doc.Emotes, ce)
	}
	for _, r := range rules {
		pos := r.Position
		doc.Replacements = append(doc.Replacements, catalogRule{Pattern: r.Pattern, Template: r.Template, Position: &pos})
	}
	return doc, nil
}
