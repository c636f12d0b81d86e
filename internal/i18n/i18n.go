// Package i18n holds the translated strings sent to users outside the UI,
// currently the email confirmation message.
package i18n

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	KeyConfirmationSubject = "confirmationEmail.subject"
	KeyConfirmationBody    = "confirmationEmail.body"
	KeyConfirmationCode    = "confirmationEmail.code"
)

var supported = []language.Tag{language.English, language.French}

var messages = map[language.Tag]map[string]string{
	language.English: {
		KeyConfirmationSubject: "Confirm your email address",
		KeyConfirmationBody:    "Please use the following code to confirm your email address. The code expires in 5 minutes.",
		KeyConfirmationCode:    "Code : %s",
	},
	language.French: {
		KeyConfirmationSubject: "Confirmez votre adresse courriel",
		KeyConfirmationBody:    "Veuillez utiliser le code suivant pour confirmer votre adresse courriel. Le code expire dans 5 minutes.",
		KeyConfirmationCode:    "Code : %s",
	},
}

type Translator struct {
	cat     catalog.Catalog
	matcher language.Matcher
}

func New() *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			// only fails on malformed messages, which are constants above
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return &Translator{cat: b, matcher: language.NewMatcher(supported)}
}

// Resolve picks the supported language that best fits an Accept-Language
// header value. English is the default.
func (t *Translator) Resolve(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, _ := t.matcher.Match(tags...)
	return supported[idx]
}

func (t *Translator) Translate(tag language.Tag, key string, args ...any) string {
	p := message.NewPrinter(tag, message.Catalog(t.cat))
	return p.Sprintf(key, args...)
}

// ConfirmationEmail renders the subject and plain text body carrying code.
// The code is passed as a string so the printer does not group its digits.
func (t *Translator) ConfirmationEmail(tag language.Tag, code int) (subject, body string) {
	subject = t.Translate(tag, KeyConfirmationSubject)
	body = t.Translate(tag, KeyConfirmationBody) + "\n\n" + t.Translate(tag, KeyConfirmationCode, strconv.Itoa(code))
	return subject, body
}
