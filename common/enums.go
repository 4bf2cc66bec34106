// Package common keeps enums shared by the include engine, configuration and
// command line handling, so none of them has to import the others.
package common

//go:generate go tool go-enum --marshal --names

// How placeholder fetches its fragment.
// ENUM(eager, lazy)
type LoadingMode int

// Global event which causes a sweep over pending lazy placeholders.
// ENUM(load, scroll, beforeprint)
type TriggerKind int

// Forced reports whether the trigger materializes placeholders regardless of
// their geometry.
func (k TriggerKind) Forced() bool {
	return k == TriggerKindBeforeprint
}

// LoadingModeFromAttr interprets value of "loading" attribute. Anything other
// than literal "lazy" means eager loading.
func LoadingModeFromAttr(val string) LoadingMode {
	if val == LoadingModeLazy.String() {
		return LoadingModeLazy
	}
	return LoadingModeEager
}
