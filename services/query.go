package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/models"

	"gorm.io/gorm"
)

// MaxSafeInteger is the default upper price bound.
const MaxSafeInteger = 1<<53 - 1

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, case-folded.
func containsPattern(s string) string {
	return "%" + strings.ToLower(likeEscaper.Replace(s)) + "%"
}

// anyColumnContains ORs a case-insensitive substring match over cols.
// models.IngredientsColumn is matched per array element, never against the
// stored JSON text.
func anyColumnContains(db *gorm.DB, cols []string, term string) *gorm.DB {
	pattern := containsPattern(term)
	conds := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		if col == models.IngredientsColumn {
			conds[i] = ingredientMatch(db.Dialector.Name())
		} else {
			conds[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
		}
		args[i] = pattern
	}
	return db.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// ingredientMatch holds when any ingredient matches the single LIKE
// placeholder. Rows whose ingredients are not an array never match.
func ingredientMatch(dialect string) string {
	switch dialect {
	case "postgres":
		return `EXISTS (SELECT 1 FROM jsonb_array_elements_text(` +
			`CASE WHEN jsonb_typeof(ingredients) = 'array' THEN ingredients ELSE '[]'::jsonb END` +
			`) AS ingredient(value) WHERE LOWER(ingredient.value) LIKE ? ESCAPE '\')`
	case "sqlite":
		return `EXISTS (SELECT 1 FROM json_each(ingredients) AS ingredient ` +
			`WHERE json_type(ingredients) = 'array' AND LOWER(ingredient.value) LIKE ? ESCAPE '\')`
	default:
		return `LOWER(CAST(ingredients AS CHAR)) LIKE ? ESCAPE '\'`
	}
}

// withDocument preloads what a meal needs to render as a document.
func withDocument(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func withLikes(db *gorm.DB) *gorm.DB {
	return db.Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

// notFoundAs maps gorm's missing-row error to a NotFound with msg.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(msg)
	}
	return err
}

// wrapStore adds context to store failures and passes typed errors through.
func wrapStore(err error, format string, args ...any) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
