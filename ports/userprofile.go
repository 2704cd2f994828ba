package ports

import "context"

// UserData is the profile information needed to gate and personalize a
// request: the user record, the app's features configuration and the set of
// features enabled for the app.
type UserData struct {
	CurrentUser     map[string]any
	FeaturesConfig  map[string]any
	FeaturesEnabled map[string]struct{}
}

// FeatureEnabled reports whether a feature is enabled for the app.
func (u UserData) FeatureEnabled(feature string) bool {
	_, ok := u.FeaturesEnabled[feature]
	return ok
}

// Bio returns the user's free-text bio, or "".
func (u UserData) Bio() string {
	bio, _ := u.CurrentUser["bio"].(string)
	return bio
}

// ReferenceAreaGeometry returns the user's configured reference area
// geometry, or nil when none is set.
func (u UserData) ReferenceAreaGeometry() GeoJSON {
	refArea, _ := u.FeaturesConfig["reference_area"].(map[string]any)
	geometry, _ := refArea["referenceAreaGeometry"].(map[string]any)
	if len(geometry) == 0 {
		return nil
	}
	return GeoJSON(geometry)
}

// UserProfileProvider looks up users and app feature configuration in the
// user profile service. The auth token is forwarded as-is.
type UserProfileProvider interface {
	UserData(ctx context.Context, appID, authToken string, featuresConfig bool) (UserData, error)
}
