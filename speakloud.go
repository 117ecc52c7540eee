// Package speakloud turns article URLs into narrated audio. It fetches a
// page, runs several independent content-extraction strategies, picks the
// best validated result, sanitizes it, and synthesizes speech in
// byte-bounded SSML chunks that are concatenated into a single artifact.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., trafilatura/, sqlite/, rod/).
package speakloud
