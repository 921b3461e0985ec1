package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

// MessageKey names a user-facing API error message.
type MessageKey string

const (
	MsgMissingAuthHeader MessageKey = "missing_auth_header"
	MsgInvalidAuthHeader MessageKey = "invalid_auth_header"
	MsgInvalidToken      MessageKey = "invalid_token"
	MsgTokenExpired      MessageKey = "token_expired"
	MsgForbidden         MessageKey = "forbidden"
	MsgValidationFailed  MessageKey = "validation_failed"
	MsgInvalidBody       MessageKey = "invalid_body"
	MsgDealerNotFound    MessageKey = "dealer_not_found"
	MsgNotFound          MessageKey = "not_found"
	MsgRateLimited       MessageKey = "rate_limited"
	MsgInternalError     MessageKey = "internal_error"
)

var supportedLanguages = []language.Tag{
	language.English, // first entry is the fallback
	language.Russian,
}

var matcher = language.NewMatcher(supportedLanguages)

var messages = map[language.Tag]map[MessageKey]string{
	language.English: {
		MsgMissingAuthHeader: "missing authorization header",
		MsgInvalidAuthHeader: "invalid authorization header format",
		MsgInvalidToken:      "invalid token",
		MsgTokenExpired:      "token expired",
		MsgForbidden:         "insufficient permissions",
		MsgValidationFailed:  "validation failed",
		MsgInvalidBody:       "invalid request body",
		MsgDealerNotFound:    "dealer not found",
		MsgNotFound:          "resource not found",
		MsgRateLimited:       "rate limit exceeded",
		MsgInternalError:     "internal server error",
	},
	language.Russian: {
		MsgMissingAuthHeader: "отсутствует заголовок авторизации",
		MsgInvalidAuthHeader: "неверный формат заголовка авторизации",
		MsgInvalidToken:      "недействительный токен",
		MsgTokenExpired:      "срок действия токена истёк",
		MsgForbidden:         "недостаточно прав",
		MsgValidationFailed:  "ошибка валидации",
		MsgInvalidBody:       "некорректное тело запроса",
		MsgDealerNotFound:    "дилер не найден",
		MsgNotFound:          "ресурс не найден",
		MsgRateLimited:       "превышен лимит запросов",
		MsgInternalError:     "внутренняя ошибка сервера",
	},
}

type localeKey struct{}

// MatchLanguage picks the supported language that best fits an
// Accept-Language header value.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supportedLanguages[0]
	}
	_, index, _ := matcher.Match(tags...)
	return supportedLanguages[index]
}

// LocaleMiddleware stores the request's preferred language in its context.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := MatchLanguage(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localeKey{}, tag)))
	})
}

// Localize returns the message for key in the request's language.
func Localize(r *http.Request, key MessageKey) string {
	tag, ok := r.Context().Value(localeKey{}).(language.Tag)
	if !ok {
		tag = MatchLanguage(r.Header.Get("Accept-Language"))
	}
	if msg, ok := messages[tag][key]; ok {
		return msg
	}
	return messages[supportedLanguages[0]][key]
}
