package notify

import (
	"bytes"
	"time"

	html "github.com/gofiber/template/html/v2"
)

type ActivationData struct {
	Name    string
	Link    string
	Expires time.Time
}

// Renderer builds message bodies from the shared html templates.
type Renderer struct{ engine *html.Engine }

func NewRenderer(engine *html.Engine) *Renderer { return &Renderer{engine: engine} }

func (r *Renderer) Activation(to string, d ActivationData) (Message, error) {
	var buf bytes.Buffer
	err := r.engine.Render(&buf, "activation_email", map[string]any{
		"Name":    d.Name,
		"Link":    d.Link,
		"Expires": d.Expires.UTC().Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Kind: KindActivation, To: to, Subject: "Activate Your Account", Body: buf.String()}, nil
}
