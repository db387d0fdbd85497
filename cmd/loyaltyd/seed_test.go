package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/loyalty-bot-backend/internal/app"
	"github.com/tbourn/loyalty-bot-backend/internal/config"
	"github.com/tbourn/loyalty-bot-backend/internal/domain"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
)

// ---------- test helpers ----------

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	dsn := fmt.Sprintf("file:seed_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.Config{
		IdempotencyTTL: time.Hour,
		Loyalty: config.LoyaltyConfig{
			AdminID:         "900",
			AdminName:       "Boss",
			VendorCacheTTL:  time.Minute,
			TicketTTL:       time.Minute,
			RewardThreshold: 10,
			DeepLinkBase:    "https://t.me/bot?start=",
		},
	}
	return app.New(db, cfg, nil, nil)
}

const sampleSeed = `
vendors:
  - {id: "100", name: "Ana", tier: premium}
  - {id: "101", name: "Luis"}
customers:
  - {id: "7", name: "Bob"}
`

// ---------- tests ----------

func TestLoadSeed(t *testing.T) {
	s, err := loadSeed(strings.NewReader(sampleSeed))
	if err != nil {
		t.Fatalf("loadSeed: %v", err)
	}
	if len(s.Vendors) != 2 || len(s.Customers) != 1 {
		t.Fatalf("got %+v", s)
	}
	if s.Vendors[0].Tier != "premium" || s.Vendors[1].Tier != "" {
		t.Fatalf("tiers: %+v", s.Vendors)
	}

	empty, err := loadSeed(strings.NewReader(""))
	if err != nil || len(empty.Vendors)+len(empty.Customers) != 0 {
		t.Fatalf("empty document: %+v, %v", empty, err)
	}
}

func TestLoadSeed_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "vendors:\n  - {id: \"1\", name: \"A\", colour: red}\n",
		"missing name":   "vendors:\n  - {id: \"1\"}\n",
		"blank customer": "customers:\n  - {id: \" \", name: \"B\"}\n",
		"not yaml":       "vendors: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := loadSeed(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}
}

func TestApplySeed_SkipsExisting(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	s, err := loadSeed(strings.NewReader(sampleSeed))
	if err != nil {
		t.Fatal(err)
	}

	res, err := applySeed(ctx, a, s)
	if err != nil {
		t.Fatalf("applySeed: %v", err)
	}
	if res != (SeedResult{Vendors: 2, Customers: 1}) {
		t.Fatalf("first run: %+v", res)
	}
	v, ok := a.Vendors.Lookup(ctx, "100")
	if !ok || v.Tier != domain.TierPremium {
		t.Fatalf("vendor 100: %+v ok=%v", v, ok)
	}
	if v, _ := a.Vendors.Lookup(ctx, "101"); v.Tier != domain.TierNormal {
		t.Fatalf("vendor 101 tier = %q", v.Tier)
	}

	res, err = applySeed(ctx, a, s)
	if err != nil {
		t.Fatalf("second applySeed: %v", err)
	}
	if res != (SeedResult{Skipped: 3}) {
		t.Fatalf("second run: %+v", res)
	}
}

func TestApplySeed_InvalidIDStops(t *testing.T) {
	a := newTestApp(t)
	s := SeedFile{Vendors: []SeedVendor{{ID: "abc", Name: "Bad"}}}
	if _, err := applySeed(context.Background(), a, s); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestRootCommand_SeedAndDedupe(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	dbPath := filepath.Join(dir, "loyalty.db")
	if err := os.WriteFile(envFile, []byte("ADMIN_ID=900\nDB_PATH="+dbPath+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	seedPath := filepath.Join(dir, "seed.yaml")
	if err := os.WriteFile(seedPath, []byte(sampleSeed), 0o600); err != nil {
		t.Fatal(err)
	}
	// Registered so the values godotenv sets are restored afterwards.
	for _, k := range []string{"ADMIN_ID", "DB_PATH"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append([]string{"--env-file", envFile}, args...))
		if err := root.Execute(); err != nil {
			t.Fatalf("%v: %v (%s)", args, err, out.String())
		}
		return out.String()
	}

	if got := run("migrate"); got != "" {
		t.Fatalf("migrate printed %q", got)
	}
	if got := run("seed", seedPath); !strings.Contains(got, "added 2 vendors, 1 customers (0 already present)") {
		t.Fatalf("seed output %q", got)
	}
	if got := run("seed", seedPath); !strings.Contains(got, "added 0 vendors, 0 customers (3 already present)") {
		t.Fatalf("reseed output %q", got)
	}
	if got := run("dedupe-vendors"); !strings.Contains(got, "removed 0 duplicate vendor rows") {
		t.Fatalf("dedupe output %q", got)
	}
}

func TestRootCommand_MissingEnvFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADMIN_ID", "900")
	t.Setenv("DB_PATH", filepath.Join(dir, "loyalty.db"))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--env-file", filepath.Join(dir, "absent.env"), "migrate"})
	if err := root.Execute(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	t.Setenv("ADMIN_ID", "900")
	t.Setenv("LOG_LEVEL", "chatty")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--env-file", "", "migrate"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Fatalf("want LOG_LEVEL error, got %v", err)
	}
}
