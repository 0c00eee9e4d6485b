package usecase

import (
	"context"
	"fmt"
	"strings"

	"coursehub/internal/domain"
)

// SuggestProvider — LLM-бэкенд, которому уходит вопрос про курсы.
type SuggestProvider interface {
	Complete(ctx context.Context, system, query string) (string, error)
}

// SuggestUseCase отвечает на вопросы про каталог. Модель получает
// актуальный список курсов в system-промпте, чтобы советовать из того,
// что реально есть, а не выдумывать каталог.
type SuggestUseCase struct {
	provider SuggestProvider
	courses  CourseStore
}

func NewSuggestUseCase(p SuggestProvider, cs CourseStore) *SuggestUseCase {
	return &SuggestUseCase{provider: p, courses: cs}
}

func (uc *SuggestUseCase) Ask(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", domain.ErrEmptyQuery
	}

	courses, err := uc.courses.List(ctx)
	if err != nil {
		return "", err
	}
	return uc.provider.Complete(ctx, systemPrompt(courses), query)
}

func systemPrompt(courses []domain.Course) string {
	var b strings.Builder
	b.WriteString("You are a course advisor for an online course catalog. " +
		"Recommend only courses from the catalog below and explain briefly why they fit. " +
		"If nothing fits, say so.\n\nCatalog:\n")
	if len(courses) == 0 {
		b.WriteString("(the catalog is currently empty)\n")
	}
	for _, c := range courses {
		fmt.Fprintf(&b, "- %s (by %s): %s\n", c.Title, c.InstructorName, c.Description)
	}
	return b.String()
}
