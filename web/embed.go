package web

import "embed"

// TemplatesFS holds the page templates; layout.html defines the shared blocks.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets.
//
//go:embed static/*
var StaticFS embed.FS
