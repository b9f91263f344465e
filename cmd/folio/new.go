package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/folio"
	"github.com/eringen/folio/scaffold"
)

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	ProjectName string
	SiteName    string
	Author      string
	Date        string
}

// NewCmd implements the 'new' command.
type NewCmd struct {
	Dir    string `arg:"" help:"Directory to create"`
	Name   string `help:"Site name (default derived from the directory)"`
	Author string `help:"Author of the first post"`
}

func (n *NewCmd) Run(_ *CLI) error {
	return runNew(n.Dir, n.Name, n.Author, time.Now())
}

func runNew(dir, name, author string, now time.Time) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	projectName := filepath.Base(dir)
	if name == "" {
		name = toTitle(projectName)
	}
	data := scaffoldData{
		ProjectName: projectName,
		SiteName:    name,
		Author:      author,
		Date:        now.Format("2006-01-02"),
	}

	fmt.Printf("Creating new folio site: %s\n\n", dir)

	root := "templates"

	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		// Compute the output path, stripping the .tmpl suffix.
		outPath := filepath.Join(dir, relPath)
		outPath = strings.TrimSuffix(outPath, ".tmpl")

		// Rename dotenv to .env.example.
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := writeTemplate(outPath, path, string(content), data); err != nil {
			return err
		}
		fmt.Printf("  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  cd %s\n", dir)
	fmt.Println("  cp .env.example .env")
	fmt.Println("  folio serve")
	return nil
}

// PostCmd implements the 'post' command.
type PostCmd struct {
	Title  string `arg:"" help:"Title of the new post"`
	Slug   string `help:"File name without extension (default derived from the title)"`
	Author string `help:"Post author (default FOLIO_SITE_AUTHOR)"`
}

func (p *PostCmd) Run(root *CLI) error {
	cfg := root.siteConfig()
	author := p.Author
	if author == "" {
		author = cfg.Author
	}
	path, err := runPost(cfg.ContentDir, p.Title, p.Slug, author, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", path)
	return nil
}

func runPost(contentDir, title, slug, author string, now time.Time) (string, error) {
	if slug == "" {
		slug = folio.Slugify(title)
	}
	if slug == "" {
		return "", fmt.Errorf("cannot derive a slug from %q; pass --slug", title)
	}
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(contentDir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	data := struct {
		Title, Author, Date string
	}{title, author, now.Format("2006-01-02")}
	if err := writeTemplate(path, "post.md.tmpl", scaffold.Post, data); err != nil {
		return "", err
	}
	return path, nil
}

func writeTemplate(outPath, name, content string, data any) error {
	tmpl, err := template.New(filepath.Base(name)).Parse(content)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "-", " "))
}
