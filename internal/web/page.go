package web

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

type uploadPageData struct {
	Action      string
	MaxFileSize int64
}

// uploadPage renders a minimal upload form that posts straight to the
// import endpoint.
func uploadPage(d uploadPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		maxMB := strconv.FormatInt(d.MaxFileSize>>20, 10)
		_, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Book import</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 3rem auto; }
form { display: flex; gap: 1rem; align-items: center; }
small { color: #666; }
</style>
</head>
<body>
<h1>Import books</h1>
<p>Upload a spreadsheet with the columns Title, Authors, Description, Category, Publisher and Price. Only the first sheet is read.</p>
<form method="post" enctype="multipart/form-data" action="`+templ.EscapeString(d.Action)+`">
<input type="file" name="file" accept=".xlsx,.xls,.csv" required>
<button type="submit">Upload</button>
</form>
<p><small>Maximum file size: `+templ.EscapeString(maxMB)+` MB</small></p>
</body>
</html>
`)
		return err
	})
}
