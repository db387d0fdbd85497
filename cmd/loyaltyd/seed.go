package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tbourn/loyalty-bot-backend/internal/app"
	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/services"
)

// SeedFile is the YAML layout accepted by the seed command:
//
//	vendors:
//	  - {id: "100", name: "Ana", tier: premium}
//	customers:
//	  - {id: "7", name: "Bob"}
type SeedFile struct {
	Vendors   []SeedVendor   `yaml:"vendors"`
	Customers []SeedCustomer `yaml:"customers"`
}

type SeedVendor struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Tier string `yaml:"tier"`
}

type SeedCustomer struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// SeedResult counts what applySeed did.
type SeedResult struct {
	Vendors   int
	Customers int
	Skipped   int
}

func newSeedCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Add vendors and customers from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			seed, err := loadSeed(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return withApp(cmd.Context(), st.cfg, func(ctx context.Context, a *app.App) error {
				res, err := applySeed(ctx, a, seed)
				if err != nil {
					return err
				}
				cmd.Printf("added %d vendors, %d customers (%d already present)\n", res.Vendors, res.Customers, res.Skipped)
				return nil
			})
		},
	}
}

// loadSeed decodes and checks a seed document. Unknown keys are rejected.
func loadSeed(r io.Reader) (SeedFile, error) {
	var s SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return SeedFile{}, err
	}
	for i, v := range s.Vendors {
		if strings.TrimSpace(v.ID) == "" || strings.TrimSpace(v.Name) == "" {
			return SeedFile{}, fmt.Errorf("vendors[%d]: id and name are required", i)
		}
	}
	for i, c := range s.Customers {
		if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
			return SeedFile{}, fmt.Errorf("customers[%d]: id and name are required", i)
		}
	}
	return s, nil
}

// applySeed adds every entry that is not already present. Existing vendors
// and customers are left untouched.
func applySeed(ctx context.Context, a *app.App, s SeedFile) (SeedResult, error) {
	var res SeedResult
	for _, v := range s.Vendors {
		_, err := a.Vendors.AddVendor(ctx, strings.TrimSpace(v.ID), strings.TrimSpace(v.Name), domain.ParseTier(v.Tier))
		switch {
		case errors.Is(err, services.ErrAlreadyExists):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("vendor %s: %w", v.ID, err)
		default:
			res.Vendors++
		}
	}
	for _, c := range s.Customers {
		_, err := a.Customers.AddCustomer(ctx, strings.TrimSpace(c.ID), strings.TrimSpace(c.Name))
		switch {
		case errors.Is(err, services.ErrAlreadyExists):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("customer %s: %w", c.ID, err)
		default:
			res.Customers++
		}
	}
	log.Info().Int("vendors", res.Vendors).Int("customers", res.Customers).Int("skipped", res.Skipped).Msg("seed applied")
	return res, nil
}
