// Wearable Comparison Service.
//
// Batch service that organizes wearable-sensor CSV exports from several
// device vendors onto a shared Linux-epoch time axis, reconciles them with a
// manually recorded placement log into per-(wearer, wrist) device wear
// intervals, and emits comparison artifacts: per-device and per-person CSV
// tables, SVG/PNG line charts, normalized-vector-length overlays, and
// pairwise cross-correlations.
//
// A separate package declaratively configures a Mindboggle neuroimaging
// workflow for an external execution engine.
package main
