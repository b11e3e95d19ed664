package server

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

var resultPage = template.Must(template.New("result").Parse(`<!doctype html>
<html lang="ru">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:560px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.ok{color:#057a55} .fail{color:#b00020}
</style>
</head>
<body>
<div class="card">
  <h2 class="{{if .OK}}ok{{else}}fail{{end}}">{{.Title}}</h2>
  <p>{{.Message}}</p>
  <p>Вернитесь в Telegram, чтобы продолжить.</p>
</div>
</body>
</html>`))

type resultPageData struct {
	OK      bool
	Title   string
	Message string
}

func (s *Server) handleSuccessPage(w http.ResponseWriter, _ *http.Request) {
	s.renderResult(w, resultPageData{
		OK:      true,
		Title:   "✅ Оплата прошла успешно",
		Message: "Бот попросит данные для активации, как только платёж будет подтверждён.",
	})
}

func (s *Server) handleFailPage(w http.ResponseWriter, _ *http.Request) {
	s.renderResult(w, resultPageData{
		OK:      false,
		Title:   "❌ Оплата не прошла",
		Message: "Попробуйте ещё раз или свяжитесь с поддержкой в боте.",
	})
}

func (s *Server) renderResult(w http.ResponseWriter, data resultPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := resultPage.Execute(w, data); err != nil {
		s.logger.Error("Failed to render result page", zap.Error(err))
	}
}
