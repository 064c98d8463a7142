// Package genre maps the free-form genre ideas readers type into book
// suggestions onto canonical catalog genres.
package genre

import "github.com/bookprepper/bookprepper-server/internal/normalize"

// Canonical is a genre an idea resolves to.
type Canonical struct {
	Name string
	Slug string
}

// names holds the display name of every canonical slug.
var names = map[string]string{
	"fiction":              "Fiction",
	"non-fiction":          "Non-Fiction",
	"fantasy":              "Fantasy",
	"epic-fantasy":         "Epic Fantasy",
	"sword-and-sorcery":    "Sword & Sorcery",
	"romantasy":            "Romantasy",
	"science-fiction":      "Science Fiction",
	"mystery":              "Mystery",
	"thriller":             "Thriller",
	"romance":              "Romance",
	"contemporary-romance": "Contemporary Romance",
	"paranormal-romance":   "Paranormal Romance",
	"horror":               "Horror",
	"gothic":               "Gothic",
	"historical-fiction":   "Historical Fiction",
	"young-adult":          "Young Adult",
	"biography-memoir":     "Biography & Memoir",
	"self-help":            "Self-Help",
	"humor":                "Humor",
	"classics":             "Classics",
	"poetry":               "Poetry",
}

// aliases maps common spellings to one or more canonical slugs.
var aliases = map[string][]string{
	"literature":                {"fiction"},
	"literary-fiction":          {"fiction"},
	"nonfiction":                {"non-fiction"},
	"sci-fi":                    {"science-fiction"},
	"scifi":                     {"science-fiction"},
	"sf":                        {"science-fiction"},
	"sci-fi-fantasy":            {"science-fiction", "fantasy"},
	"science-fiction-fantasy":   {"science-fiction", "fantasy"},
	"high-fantasy":              {"epic-fantasy"},
	"s-s":                       {"sword-and-sorcery"},
	"fantasy-romance":           {"romantasy"},
	"romantic-fantasy":          {"romantasy"},
	"suspense":                  {"thriller"},
	"mystery-thriller":          {"mystery", "thriller"},
	"mystery-thriller-suspense": {"mystery", "thriller"},
	"whodunit":                  {"mystery"},
	"modern-romance":            {"contemporary-romance"},
	"pnr":                       {"paranormal-romance"},
	"scary":                     {"horror"},
	"gothic-fiction":            {"gothic"},
	"gothic-horror":             {"gothic", "horror"},
	"historical":                {"historical-fiction"},
	"ya":                        {"young-adult"},
	"teen":                      {"young-adult"},
	"teens-young-adult":         {"young-adult"},
	"biography":                 {"biography-memoir"},
	"memoir":                    {"biography-memoir"},
	"biographies-memoirs":       {"biography-memoir"},
	"selfhelp":                  {"self-help"},
	"personal-development":      {"self-help"},
	"comedy":                    {"humor"},
	"humour":                    {"humor"},
	"classic":                   {"classics"},
	"classic-literature":        {"classics"},
}

// Resolve returns the canonical genres for a raw idea. An idea with no
// alias resolves to itself, keeping the reader's spelling as its name.
// Ideas without a letter or digit resolve to nothing.
func Resolve(raw string) []Canonical {
	name := normalize.Name(raw)
	if !normalize.HasSlug(name) {
		return nil
	}
	slug := normalize.Slugify(name)

	if targets, ok := aliases[slug]; ok {
		out := make([]Canonical, 0, len(targets))
		for _, t := range targets {
			out = append(out, Canonical{Name: names[t], Slug: t})
		}
		return out
	}

	if known, ok := names[slug]; ok {
		return []Canonical{{Name: known, Slug: slug}}
	}
	return []Canonical{{Name: name, Slug: slug}}
}

// ResolveAll resolves every idea and drops repeated slugs, keeping the
// first occurrence.
func ResolveAll(ideas []string) []Canonical {
	seen := make(map[string]struct{}, len(ideas))
	out := make([]Canonical, 0, len(ideas))
	for _, idea := range ideas {
		for _, c := range Resolve(idea) {
			if _, dup := seen[c.Slug]; dup {
				continue
			}
			seen[c.Slug] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
