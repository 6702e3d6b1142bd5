// Package seed loads the sample catalog: six categories, an admin account
// and four featured products.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/01moynul/vividen-storefront/internal/models"
	"github.com/01moynul/vividen-storefront/internal/store"
)

// ErrAlreadySeeded is returned when the sample catalog is already present.
var ErrAlreadySeeded = errors.New("store already seeded")

// Writer is the subset of the entity store seeding writes through.
type Writer interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateProduct(ctx context.Context, p *models.Product) error
}

// Store is a Writer that can run a unit of work in one transaction.
type Store interface {
	Writer
	InTx(ctx context.Context, fn func(tx *store.Store) error) error
}

type Options struct {
	AdminEmail    string
	AdminPassword string
}

type Result struct {
	Admin      *models.User
	Categories []*models.Category
	Products   []*models.Product
}

type categorySeed struct {
	name, slug, description, icon string
}

var categories = []categorySeed{
	{"Audio & Music", "audio-music", "High-quality audio files, music tracks, and sound effects", "fas fa-music"},
	{"Video Templates", "video-templates", "Professional video templates and motion graphics", "fas fa-video"},
	{"UI/UX Kits", "ui-ux-kits", "Complete interface design systems and UI components", "fas fa-layer-group"},
	{"eBooks & Guides", "ebooks-guides", "Digital books and comprehensive design guides", "fas fa-book"},
	{"Sound Effects", "sound-effects", "Professional sound effects for any project", "fas fa-volume-up"},
	{"PSD Templates", "psd-templates", "Layered Photoshop templates and design files", "fas fa-file-image"},
}

type productSeed struct {
	title, description, price, category, thumbnail, format string
	tags                                                   []string
}

var products = []productSeed{
	{
		title:       "Modern Dashboard UI Kit",
		description: "Complete admin dashboard with 50+ screens",
		price:       "29.00",
		category:    "ui-ux-kits",
		thumbnail:   "https://images.unsplash.com/photo-1586717791821-3f44a563fa4c?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
		format:      "Figma, Sketch",
		tags:        []string{"ui", "dashboard", "admin", "modern"},
	},
	{
		title:       "Corporate Intro Template",
		description: "Professional business presentation intro",
		price:       "45.00",
		category:    "video-templates",
		thumbnail:   "https://images.unsplash.com/photo-1574717024653-61fd2cf4d44d?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
		format:      "After Effects",
		tags:        []string{"video", "corporate", "intro", "business"},
	},
	{
		title:       "Cinematic Background Music",
		description: "Epic orchestral soundtrack for videos",
		price:       "19.00",
		category:    "audio-music",
		thumbnail:   "https://images.unsplash.com/photo-1598488035139-bdbb2231ce04?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
		format:      "MP3, WAV",
		tags:        []string{"music", "cinematic", "orchestral", "background"},
	},
	{
		title:       "Complete Design Guide",
		description: "150-page comprehensive design manual",
		price:       "35.00",
		category:    "ebooks-guides",
		thumbnail:   "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
		format:      "PDF",
		tags:        []string{"ebook", "design", "guide", "manual"},
	},
}

// Run inserts the sample catalog in a single transaction, so a failed run
// leaves nothing behind. It refuses with ErrAlreadySeeded when the first
// sample category already exists.
func Run(ctx context.Context, st Store, opts Options) (*Result, error) {
	var res *Result
	err := st.InTx(ctx, func(tx *store.Store) error {
		var err error
		res, err = load(ctx, tx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func load(ctx context.Context, st Writer, opts Options) (*Result, error) {
	if _, err := st.GetCategoryBySlug(ctx, categories[0].slug); err == nil {
		return nil, ErrAlreadySeeded
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check seed state: %w", err)
	}

	res := &Result{}

	// 1. --- Categories ---
	bySlug := make(map[string]string, len(categories))
	for i, cs := range categories {
		c := &models.Category{
			Name:        cs.name,
			Slug:        cs.slug,
			Description: ptr(cs.description),
			Icon:        ptr(cs.icon),
			IsActive:    true,
			SortOrder:   i + 1,
		}
		if err := st.CreateCategory(ctx, c); err != nil {
			return nil, fmt.Errorf("seed category %s: %w", cs.slug, err)
		}
		bySlug[c.Slug] = c.ID
		res.Categories = append(res.Categories, c)
	}

	// 2. --- Admin ---
	admin, err := seedAdmin(ctx, st, opts)
	if err != nil {
		return nil, err
	}
	res.Admin = admin

	// 3. --- Featured products ---
	for _, ps := range products {
		p := &models.Product{
			Title:        ps.title,
			Description:  ps.description,
			Price:        decimal.RequireFromString(ps.price),
			CategoryID:   bySlug[ps.category],
			AuthorID:     &admin.ID,
			ThumbnailURL: ptr(ps.thumbnail),
			FileFormat:   ptr(ps.format),
			Tags:         models.Tags(ps.tags),
			IsFeatured:   true,
			IsActive:     true,
		}
		if err := st.CreateProduct(ctx, p); err != nil {
			return nil, fmt.Errorf("seed product %q: %w", ps.title, err)
		}
		res.Products = append(res.Products, p)
	}

	return res, nil
}

// seedAdmin reuses an existing account with the admin email.
func seedAdmin(ctx context.Context, st Writer, opts Options) (*models.User, error) {
	existing, err := st.GetUserByEmail(ctx, opts.AdminEmail)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("look up admin: %w", err)
	}

	var pw models.Password
	if err := pw.Set(opts.AdminPassword); err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		Username:     "admin",
		Email:        opts.AdminEmail,
		PasswordHash: pw.Hash,
		IsAdmin:      true,
		FirstName:    ptr("Admin"),
		LastName:     ptr("User"),
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return admin, nil
}

func ptr(s string) *string { return &s }
