package services

// Translator looks up display strings for the current locale
type Translator interface {
	T(key string) string
	Format(key string, vars map[string]string) string
}

type keyTranslator struct{}

func (keyTranslator) T(key string) string { return key }

func (keyTranslator) Format(key string, _ map[string]string) string { return key }
