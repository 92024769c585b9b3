package services

import (
	"os"
)

type FeatureFlags struct {
	groupedListingEnabled bool
	searchAnalytics       bool
	staleResultGuard      bool
}

func NewFeatureFlags() *FeatureFlags {
	return &FeatureFlags{
		groupedListingEnabled: os.Getenv("FEATURE_GROUPED_LISTING") != "false",
		searchAnalytics:       os.Getenv("FEATURE_SEARCH_ANALYTICS") == "true",
		staleResultGuard:      os.Getenv("FEATURE_STALE_RESULT_GUARD") != "false",
	}
}

func (f *FeatureFlags) GroupedListingEnabled() bool {
	return f.groupedListingEnabled
}

func (f *FeatureFlags) SearchAnalyticsEnabled() bool {
	return f.searchAnalytics
}

// StaleResultGuardEnabled controls whether sessions drop results of
// superseded searches.
func (f *FeatureFlags) StaleResultGuardEnabled() bool {
	return f.staleResultGuard
}
