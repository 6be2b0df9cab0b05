// Package i18n handles localized user-facing strings.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	goLocale "github.com/jeandeaual/go-locale"
	i18nLib "github.com/kaptinlin/go-i18n"
	"golang.org/x/text/language"

	"github.com/meza/koikatsu-mod-manager/internal/environment"
)

type LocaleProvider interface {
	GetLocales() ([]string, error)
}

type DefaultLocaleProvider struct{}

func (provider DefaultLocaleProvider) GetLocales() ([]string, error) {
	return goLocale.GetLocales()
}

//go:embed lang/*.json
var langFS embed.FS

const defaultLocale = "en-GB"

var (
	langDir                       = "lang"
	localeProvider LocaleProvider = DefaultLocaleProvider{}
	envLookup                     = lookupLangEnv

	setupOnce sync.Once
	// translationMutex guards localizer.Get(); go-i18n's internal cache is not safe for concurrent use.
	translationMutex sync.Mutex
	localizer        *i18nLib.Localizer
)

type TData map[string]interface{}

type Tvars struct {
	Count int
	Data  *TData
}

// SetLocaleProviderForTesting swaps the locale source and resets the bundle.
func SetLocaleProviderForTesting(provider LocaleProvider) func() {
	previous := localeProvider
	localeProvider = provider
	ResetForTesting()
	return func() {
		localeProvider = previous
		ResetForTesting()
	}
}

func ResetForTesting() {
	translationMutex.Lock()
	localizer = nil
	translationMutex.Unlock()
	setupOnce = sync.Once{}
}

func setup() {
	files, err := langFS.ReadDir(langDir)
	if err != nil {
		panic(err)
	}

	locales := []string{defaultLocale}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		locale := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		if strings.EqualFold(locale, defaultLocale) {
			continue
		}
		locales = append(locales, locale)
	}

	bundle := i18nLib.NewBundle(
		i18nLib.WithDefaultLocale(defaultLocale),
		i18nLib.WithLocales(locales...),
	)
	if err := bundle.LoadFS(langFS, fmt.Sprintf("%s/*.json", langDir)); err != nil {
		panic(err)
	}

	built := bundle.NewLocalizer(buildLocalizerLocales(userLocales())...)

	translationMutex.Lock()
	localizer = built
	translationMutex.Unlock()
}

// T translates key. Under KMM_TEST the key and arguments are returned verbatim
// so assertions do not depend on copy changes.
func T(key string, args ...Tvars) string {
	if len(args) > 1 {
		panic("Too many arguments")
	}

	if environment.IsTest() {
		return formatKeyAndArgs(key, args...)
	}

	setupOnce.Do(setup)

	var vars i18nLib.Vars
	if len(args) > 0 {
		vars = i18nLib.Vars{"count": args[0].Count}
		if args[0].Data != nil {
			for name, value := range *args[0].Data {
				vars[name] = value
			}
		}
	}

	translationMutex.Lock()
	defer translationMutex.Unlock()

	if vars == nil {
		return localizer.Get(key)
	}
	return localizer.Get(key, vars)
}

func lookupLangEnv() (string, bool) {
	return os.LookupEnv("LANG")
}

func userLocales() []string {
	if envLocale, present := envLookup(); present && envLocale != "" {
		return []string{envLocale}
	}

	detected, err := localeProvider.GetLocales()
	if err != nil {
		return []string{language.English.String()}
	}

	locales := make([]string, 0, len(detected))
	for _, name := range detected {
		if name == "" {
			continue
		}
		locales = append(locales, name)
	}
	return locales
}

func formatKeyAndArgs(key string, args ...Tvars) string {
	var sb strings.Builder
	sb.WriteString(key)

	for i, arg := range args {
		sb.WriteString(fmt.Sprintf(", Arg %d: {Count: %d, Data: %v}", i+1, arg.Count, arg.Data))
	}

	return sb.String()
}

// buildLocalizerLocales canonicalises raw locale names (fr_FR.UTF-8, de-DE)
// and appends each base language as a fallback.
func buildLocalizerLocales(rawLocales []string) []string {
	locales := make([]string, 0, len(rawLocales)*2)
	seen := make(map[string]struct{}, len(rawLocales)*2)

	add := func(value string) {
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		locales = append(locales, value)
	}

	for _, raw := range rawLocales {
		name := strings.SplitN(raw, ".", 2)[0]
		name = strings.ReplaceAll(name, "_", "-")
		if name == "" {
			continue
		}

		tag, err := language.Parse(name)
		if err != nil {
			continue
		}

		add(tag.String())
		if base, _ := tag.Base(); base.String() != "" {
			add(base.String())
		}
	}

	return locales
}
