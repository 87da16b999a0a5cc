package emailvalidation

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasttemplate"
)

// LinkPlaceholder marks where the token id goes in a link template.
const LinkPlaceholder = "{0}"

// ValidateLinkTemplate checks that template has exactly one placeholder and
// renders to an absolute URL.
func ValidateLinkTemplate(template string) error {
	_, err := RenderLink(template, uuid.Nil)
	return err
}

// RenderLink substitutes tokenID into template. Other {...} sequences are left
// untouched, but a brace that swallows the placeholder, as in "{a{0}", is
// rejected.
func RenderLink(template string, tokenID uuid.UUID) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("%w: link template is empty", ErrInvalidArgument)
	}

	if n := strings.Count(template, LinkPlaceholder); n != 1 {
		return "", fmt.Errorf("%w: link template must contain exactly one %s placeholder, found %d", ErrInvalidArgument, LinkPlaceholder, n)
	}

	substituted := 0
	link, err := fasttemplate.ExecuteFuncStringWithErr(template, "{", "}", func(w io.Writer, tag string) (int, error) {
		if tag == "0" {
			substituted++
			return w.Write([]byte(tokenID.String()))
		}
		return w.Write([]byte("{" + tag + "}"))
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to render link template: %v", ErrInvalidArgument, err)
	}
	if substituted != 1 {
		return "", fmt.Errorf("%w: link template placeholder %s is not usable, check for unbalanced braces", ErrInvalidArgument, LinkPlaceholder)
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: link template is not a valid URL: %v", ErrInvalidArgument, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: link template must be an absolute URL", ErrInvalidArgument)
	}

	return link, nil
}

// ResolveLinkTemplate joins a path-only template onto baseURL. Absolute
// templates are returned unchanged.
func ResolveLinkTemplate(baseURL, template string) string {
	if strings.HasPrefix(template, "/") {
		return strings.TrimRight(baseURL, "/") + template
	}
	return template
}
