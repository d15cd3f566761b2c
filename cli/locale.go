package cli

import "github.com/leonelquinteros/gotext"

// Domain is the gettext domain of the front-end strings.
const Domain = "blackwood"

// Localize loads the front-end translations for lang from dir, laid out as
// dir/<lang>/LC_MESSAGES/blackwood.po. Without a dir the English strings
// are used as they are.
func Localize(dir, lang string) {
	if dir == "" || lang == "" {
		return
	}
	gotext.Configure(dir, lang, Domain)
}
