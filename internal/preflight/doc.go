// Package preflight provides readiness checks for the external binaries and
// filesystem paths Easel depends on.
//
// These checks run in two contexts:
//   - The CLI "easel doctor" command displays every check in one table.
//   - The render and serve commands call CheckSystemDeps before starting so a
//     missing ffmpeg fails up front instead of partway through a batch.
package preflight
