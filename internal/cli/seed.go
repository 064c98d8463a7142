package cli

import (
	"errors"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/normalize"
	"github.com/bookprepper/bookprepper-server/internal/service"
)

type sampleBook struct {
	title    string
	author   string
	year     int
	synopsis string
	genres   []string
	preps    []service.CreatePrepRequest
}

var sampleGenres = []string{"Gothic", "Science Fiction", "Classics"}

var sampleBooks = []sampleBook{
	{
		title:    "Frankenstein",
		author:   "Mary Shelley",
		year:     1818,
		synopsis: "<p>A young scientist creates a living being and flees from it.</p>",
		genres:   []string{"Gothic", "Science Fiction", "Classics"},
		preps: []service.CreatePrepRequest{
			{
				Heading:  "Letters at sea",
				Summary:  "The story opens with Captain Walton's letters to his sister before Victor's tale begins.",
				Keywords: []string{"Epistolary", "Frame narrative"},
			},
			{
				Heading:  "Three narrators",
				Summary:  "Walton, Victor and the creature each tell part of the story in turn.",
				Keywords: []string{"Frame narrative"},
			},
		},
	},
	{
		title:    "Dracula",
		author:   "Bram Stoker",
		year:     1897,
		synopsis: "<p>Told through diaries and letters, a band of friends hunts a Transylvanian count.</p>",
		genres:   []string{"Gothic", "Classics"},
		preps: []service.CreatePrepRequest{
			{
				Heading:  "A novel of documents",
				Summary:  "The book is assembled from journals, letters, newspaper clippings and phonograph records.",
				Keywords: []string{"Epistolary"},
			},
		},
	},
}

func seedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a small sample catalog for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(func(i do.Injector) error {
				ctx := cmd.Context()
				genres := do.MustInvoke[*service.GenreService](i)
				books := do.MustInvoke[*service.BookService](i)
				preps := do.MustInvoke[*service.PrepService](i)

				genreIDs := make(map[string]string, len(sampleGenres))
				existing, err := genres.ListGenres(ctx)
				if err != nil {
					return err
				}
				for _, g := range existing {
					genreIDs[g.Name] = g.ID
				}
				for _, name := range sampleGenres {
					if _, ok := genreIDs[name]; ok {
						continue
					}
					g, err := genres.CreateGenre(ctx, service.CreateGenreRequest{Name: name})
					if err != nil {
						return fmt.Errorf("create genre %q: %w", name, err)
					}
					genreIDs[name] = g.ID
				}

				created := 0
				for _, sb := range sampleBooks {
					_, err := books.GetBookBySlug(ctx, normalize.Slugify(sb.title))
					if err == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "skipped %q: already in catalog\n", sb.title)
						continue
					}
					if !errors.Is(err, domainerrors.ErrNotFound) {
						return err
					}

					ids := make([]string, 0, len(sb.genres))
					for _, name := range sb.genres {
						ids = append(ids, genreIDs[name])
					}
					synopsis := sb.synopsis
					book, err := books.CreateBook(ctx, service.CreateBookRequest{
						Title:         sb.title,
						AuthorName:    sb.author,
						Synopsis:      &synopsis,
						PublishedYear: sb.year,
						GenreIDs:      ids,
					})
					if err != nil {
						return fmt.Errorf("create book %q: %w", sb.title, err)
					}
					for _, req := range sb.preps {
						if _, err := preps.CreatePrep(ctx, book.ID, req); err != nil {
							return fmt.Errorf("create prep %q: %w", req.Heading, err)
						}
					}
					created++
				}

				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d books\n", created)
				return nil
			})
		},
	}
}
