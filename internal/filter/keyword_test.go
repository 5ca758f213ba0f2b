package filter

import (
	"testing"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
)

func TestMatchesKeywordInTitle(t *testing.T) {
	t.Parallel()

	article := domain.Article{Title: "The Fed raises rates"}
	hits, ok := Matches(article, []string{"fed", "inflation"})

	if !ok {
		t.Fatal("expected a match")
	}
	if len(hits) != 1 || hits[0] != "fed" {
		t.Fatalf("unexpected hits: %v", hits)
	}
}

func TestMatchesKeywordInSnippet(t *testing.T) {
	t.Parallel()

	article := domain.Article{
		Title:   "Morning briefing",
		Snippet: "Inflation cooled in March, data shows.",
	}
	if _, ok := Matches(article, []string{"fed", "inflation"}); !ok {
		t.Fatal("expected snippet match")
	}
}

func TestMatchesRejectsUnrelatedArticle(t *testing.T) {
	t.Parallel()

	article := domain.Article{Title: "Local bakery opens"}
	if hits, ok := Matches(article, []string{"fed", "inflation"}); ok {
		t.Fatalf("unexpected match: %v", hits)
	}
}

func TestEmptyKeywordSetMatchesEverything(t *testing.T) {
	t.Parallel()

	for _, title := range []string{"The Fed raises rates", "Local bakery opens"} {
		if _, ok := Matches(domain.Article{Title: title}, nil); !ok {
			t.Fatalf("empty keyword set should match %q", title)
		}
	}
}

func TestBlankKeywordsAreIgnored(t *testing.T) {
	t.Parallel()

	article := domain.Article{Title: "Local bakery opens"}
	if _, ok := Matches(article, []string{"  ", ""}); ok {
		t.Fatal("blank keywords must not match everything")
	}
}
