package domain

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const MaxSolvePhraseLen = 200

var (
	roomIDPattern     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	playerNamePattern = regexp.MustCompile(`^[\p{L}\p{N}\s._-]+$`)
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := RegisterValidations(validate); err != nil {
			panic(err)
		}
	})
	return validate
}

// RegisterValidations adds the roomid, playername, guessletter and
// solvephrase tags to v.
func RegisterValidations(v *validator.Validate) error {
	tags := map[string]func(string) bool{
		"roomid":      IsValidRoomID,
		"playername":  IsValidPlayerName,
		"guessletter": IsValidGuessLetter,
		"solvephrase": IsValidSolvePhrase,
	}
	for tag, check := range tags {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

func IsValidRoomID(id string) bool {
	return id != "" && len(id) <= MaxRoomIDLen && roomIDPattern.MatchString(id)
}

func IsValidPlayerName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" &&
		utf8.RuneCountInString(name) <= MaxPlayerNameLen &&
		playerNamePattern.MatchString(trimmed)
}

func IsValidGuessLetter(letter string) bool {
	r, size := utf8.DecodeRuneInString(letter)
	return size > 0 && size == len(letter) && unicode.IsLetter(r)
}

func IsValidSolvePhrase(phrase string) bool {
	n := utf8.RuneCountInString(phrase)
	return n >= 1 && n <= MaxSolvePhraseLen
}
