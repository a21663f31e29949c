// Command seed loads demo fixtures from a YAML file into the database.
// Intended for local development and review environments.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"crm_portal_backend/platform/config"
	"crm_portal_backend/platform/db"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"
)

type fixtureFile struct {
	TenantID          string            `yaml:"tenant_id"`
	Roles             []roleFixture     `yaml:"roles"`
	Integrations      []integration     `yaml:"integrations"`
	Contacts          []contactFixture  `yaml:"contacts"`
	Leads             []leadFixture     `yaml:"leads"`
	ContractTemplates []templateFixture `yaml:"contract_templates"`
}

type roleFixture struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Permissions []string `yaml:"permissions"`
}

type integration struct {
	Provider string `yaml:"provider"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Enabled  bool   `yaml:"enabled"`
}

type contactFixture struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Company string `yaml:"company"`
	Title   string `yaml:"title"`
	Stage   string `yaml:"stage"`
	Notes   string `yaml:"notes"`
}

type leadFixture struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Company string `yaml:"company"`
	Source  string `yaml:"source"`
	Stage   string `yaml:"stage"`
	Score   int    `yaml:"score"`
	Notes   string `yaml:"notes"`
}

type templateFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Body        string `yaml:"body"`
	Active      bool   `yaml:"active"`
}

func main() {
	path := flag.String("file", "fixtures/seed.yaml", "path to the fixture YAML file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("seeding database", "file", *path)

	fixtures, err := loadFixtures(*path)
	if err != nil {
		log.Error("failed to load fixtures", "error", err)
		panic("failed to load fixtures: " + err.Error())
	}

	tenantID, err := uuid.Parse(fixtures.TenantID)
	if err != nil {
		log.Error("invalid tenant_id in fixture file", "error", err)
		panic("invalid tenant_id in fixture file: " + err.Error())
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Error("failed to begin transaction", "error", err)
		panic("failed to begin transaction: " + err.Error())
	}
	defer tx.Rollback(ctx)

	if err := seed(ctx, tx, tenantID, fixtures); err != nil {
		log.Error("seed failed", "error", err)
		panic("seed failed: " + err.Error())
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error("failed to commit", "error", err)
		panic("failed to commit: " + err.Error())
	}

	log.Info("seed complete",
		"tenant", tenantID,
		"roles", len(fixtures.Roles),
		"integrations", len(fixtures.Integrations),
		"contacts", len(fixtures.Contacts),
		"leads", len(fixtures.Leads),
		"templates", len(fixtures.ContractTemplates),
	)
}

func loadFixtures(path string) (*fixtureFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}

	var fixtures fixtureFile
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixture file: %w", err)
	}
	return &fixtures, nil
}

func seed(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, fixtures *fixtureFile) error {
	for _, role := range fixtures.Roles {
		roleID := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO crm_roles (id, tenant_id, name, description)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (tenant_id, name) DO NOTHING`,
			roleID, tenantID, role.Name, role.Description,
		)
		if err != nil {
			return fmt.Errorf("seed role %q: %w", role.Name, err)
		}
		for _, permission := range role.Permissions {
			_, err := tx.Exec(ctx, `
				INSERT INTO crm_role_permissions (role_id, permission)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING`,
				roleID, permission,
			)
			if err != nil {
				return fmt.Errorf("seed permission %q for role %q: %w", permission, role.Name, err)
			}
		}
	}

	for _, item := range fixtures.Integrations {
		_, err := tx.Exec(ctx, `
			INSERT INTO crm_integrations (id, tenant_id, provider, name, category, is_enabled)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), tenantID, item.Provider, item.Name, item.Category, item.Enabled,
		)
		if err != nil {
			return fmt.Errorf("seed integration %q: %w", item.Name, err)
		}
	}

	for _, contact := range fixtures.Contacts {
		stage := contact.Stage
		if stage == "" {
			stage = "customer"
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO crm_contacts (id, tenant_id, name, email, phone, company, title, stage, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.New(), tenantID, contact.Name, contact.Email, contact.Phone,
			contact.Company, contact.Title, stage, contact.Notes,
		)
		if err != nil {
			return fmt.Errorf("seed contact %q: %w", contact.Name, err)
		}
	}

	for _, lead := range fixtures.Leads {
		stage := lead.Stage
		if stage == "" {
			stage = "new"
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO crm_leads (id, tenant_id, name, email, phone, company, source, stage, lead_score, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New(), tenantID, lead.Name, lead.Email, lead.Phone,
			lead.Company, lead.Source, stage, lead.Score, lead.Notes,
		)
		if err != nil {
			return fmt.Errorf("seed lead %q: %w", lead.Name, err)
		}
	}

	for _, tpl := range fixtures.ContractTemplates {
		_, err := tx.Exec(ctx, `
			INSERT INTO crm_contract_templates (id, tenant_id, name, description, body, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), tenantID, tpl.Name, tpl.Description, tpl.Body, tpl.Active,
		)
		if err != nil {
			return fmt.Errorf("seed contract template %q: %w", tpl.Name, err)
		}
	}

	return nil
}
