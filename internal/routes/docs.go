package routes

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/AbelSturm/fitzoapp/internal/config"
	"github.com/gofiber/fiber/v2"
)

//go:embed openapi.yaml
var openAPISpec []byte

const docsIndexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <style>
    body { margin: 0; font-family: system-ui, sans-serif; color: #1b2430; background: #f5f6f8; }
    main { max-width: 960px; margin: 0 auto; padding: 40px 20px 56px; }
    h1 { margin: 0 0 8px; font-size: 2.2rem; }
    p { color: #55606e; line-height: 1.6; }
    .panel { background: #fff; border: 1px solid #dde1e6; border-radius: 12px; padding: 20px; margin-top: 16px; }
    .meta { display: flex; gap: 24px; flex-wrap: wrap; }
    .meta strong { display: block; font-size: 0.8rem; text-transform: uppercase; color: #55606e; }
    a.button { display: inline-block; padding: 10px 16px; border-radius: 8px; background: #0f6fff; color: #fff; text-decoration: none; }
    pre { margin: 0; padding: 16px; overflow: auto; border-radius: 8px; background: #111827; color: #e5e7eb; font-size: 0.9rem; }
  </style>
</head>
<body>
  <main>
    <h1>{{ .Title }}</h1>
    <p>Development-only reference for the dashboard API. Every dashboard route sits behind the session gate and redirects with 303 when the visitor may not enter.</p>
    <a class="button" href="/docs/openapi.yaml">Open raw spec</a>
    <section class="panel meta">
      <div><strong>Spec path</strong><span>/docs/openapi.yaml</span></div>
      <div><strong>Loaded</strong><span>{{ .LoadedAt }}</span></div>
    </section>
    <section class="panel">
      <pre>{{ .Spec }}</pre>
    </section>
  </main>
</body>
</html>
`

type docsPageData struct {
	Title    string
	LoadedAt string
	Spec     string
}

// registerDocsRoutes mounts /docs only when docs are enabled for a
// development environment.
func registerDocsRoutes(app fiber.Router, cfg *config.Config) error {
	if !cfg.DocsEnabled() {
		return nil
	}

	indexTemplate, err := template.New("docs-index").Parse(docsIndexHTML)
	if err != nil {
		return fmt.Errorf("parse docs template: %w", err)
	}

	pageData := docsPageData{
		Title:    "Fitzo API Docs",
		LoadedAt: time.Now().UTC().Format(time.RFC3339),
		Spec:     string(openAPISpec),
	}

	indexHandler := func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, fiber.MIMETextHTMLCharsetUTF8)
		c.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; base-uri 'none'; form-action 'none'; frame-ancestors 'none'")

		var body bytes.Buffer
		if err := indexTemplate.Execute(&body, pageData); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render api docs")
		}
		return c.Status(fiber.StatusOK).Send(body.Bytes())
	}

	app.Get("/docs", indexHandler)
	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, "application/yaml; charset=utf-8")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		c.Set(fiber.HeaderContentDisposition, `inline; filename="openapi.yaml"`)
		return c.Status(fiber.StatusOK).Send(openAPISpec)
	})

	return nil
}

func applyDocsBaseHeaders(c *fiber.Ctx, contentType string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set("Referrer-Policy", "no-referrer")
	c.Set("X-Robots-Tag", "noindex, nofollow")
}
