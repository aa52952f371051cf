// Package docker locates saved container images in a project's input
// directory and extracts their layers into the codebase directory.
//
// Both archive layouts produced by container tooling are supported: the
// docker-save layout (manifest.json listing layer tarballs) and the OCI
// image layout (index.json plus content-addressed blobs). Layers are
// applied in order with overlayfs whiteout semantics, so the extracted
// tree matches the filesystem a container started from the image would
// see.
package docker
