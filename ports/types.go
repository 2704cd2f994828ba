package ports

// GeoJSON is a decoded GeoJSON object. The service treats geometries as
// opaque; only FeatureCollection nesting and feature properties are ever
// inspected.
type GeoJSON map[string]any
