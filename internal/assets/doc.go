// Package assets indexes the on-disk creative library. The library root has
// a fixed shape:
//
//	heroes/<format>/<slug>.png|jpg|jpeg
//	heroes/<format>/<group>/<slug>.png|jpg|jpeg
//	overlays/static/<format>/(<group>/)?<slug>.png
//	overlays/video/<format>/(<group>/)?<slug>.mov|webm|mp4
//
// Heroes and overlays live per output format so each crop is art-directed
// rather than derived. Slugs come from file stems and identify assets in
// position records, batch plans, and the API.
package assets
