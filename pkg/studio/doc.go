// Package studio provides the content and lead backend for a studio's public
// site: portfolio projects, blog posts, team profiles, contact messages and
// newsletter subscribers.
//
// A single Service orchestrates the five entity stores and the media
// attachment store. Projects, posts and team members may own one uploaded
// image; the service keeps the record and its file consistent on create and
// delete. Contact submissions are persisted first and then handed to a
// Notifier.
//
// Repository backends (memory, Postgres, SQLite) and blob stores (memory,
// filesystem, S3) live in subpackages and are wired together by the config
// package.
package studio
