package mail

import (
	"fmt"
	htmlTemplate "html/template"
	"io/fs"
	"os"
	"path"
	textTemplate "text/template"
	"time"

	"github.com/tech-arch1tect/mailcheck/config"
	"github.com/tech-arch1tect/mailcheck/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// MailClient is the subset of *mail.Client the service needs.
type MailClient interface {
	DialAndSend(messages ...*mail.Msg) error
}

// Service renders named templates into messages and hands them to a
// MailClient. A template name resolves to "<name>.html" and "<name>.txt";
// either may be missing, not both.
type Service struct {
	config *config.MailConfig
	client MailClient
	html   *htmlTemplate.Template
	text   *textTemplate.Template
	logger *logging.Service
}

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	client, err := mail.NewClient(cfg.Host, smtpOptions(cfg)...)
	if err != nil {
		logger.Error("failed to create mail client", zap.Error(err), zap.String("host", cfg.Host), zap.Int("port", cfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	logger.Info("mail client configured",
		zap.String("server", client.ServerAddr()),
		zap.String("tls_policy", client.TLSPolicy()),
		zap.Bool("auth", cfg.Username != ""))

	return NewServiceWithClient(cfg, logger, client)
}

func NewServiceWithClient(cfg *config.MailConfig, logger *logging.Service, client MailClient) (*Service, error) {
	if cfg.FromAddress == "" {
		logger.Error("mail from address is not configured")
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	service := &Service{
		config: cfg,
		client: client,
		html:   htmlTemplate.New(""),
		text:   textTemplate.New(""),
		logger: logger,
	}

	if cfg.TemplatesDir != "" {
		if err := service.AddTemplatesFS(os.DirFS(cfg.TemplatesDir), "."); err != nil {
			logger.Error("failed to load mail templates", zap.Error(err), zap.String("dir", cfg.TemplatesDir))
			return nil, fmt.Errorf("failed to load mail templates: %w", err)
		}
	}

	return service, nil
}

func smtpOptions(cfg *config.MailConfig) []mail.Option {
	options := []mail.Option{mail.WithPort(cfg.Port)}

	if cfg.Username != "" {
		options = append(options, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		options = append(options, mail.WithPassword(cfg.Password))
	}

	switch cfg.Encryption {
	case "ssl":
		options = append(options, mail.WithSSL())
	case "none":
		options = append(options, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		options = append(options, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	return options
}

// AddTemplatesFS registers the *.html and *.txt files in dir of fsys. A name
// that is already registered keeps its first definition, so templates from
// MAIL_TEMPLATES_DIR override ones added later by other packages.
func (s *Service) AddTemplatesFS(fsys fs.FS, dir string) error {
	added := 0

	err := eachTemplate(fsys, dir, "*.html", func(name, content string) error {
		if s.html.Lookup(name) != nil {
			return nil
		}
		added++
		_, err := s.html.New(name).Parse(content)
		return err
	})
	if err != nil {
		return err
	}

	err = eachTemplate(fsys, dir, "*.txt", func(name, content string) error {
		if s.text.Lookup(name) != nil {
			return nil
		}
		added++
		_, err := s.text.New(name).Parse(content)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Debug("mail templates registered", zap.String("dir", dir), zap.Int("added", added))
	return nil
}

func eachTemplate(fsys fs.FS, dir, pattern string, add func(name, content string) error) error {
	files, err := fs.Glob(fsys, path.Join(dir, pattern))
	if err != nil {
		return fmt.Errorf("invalid template pattern %s: %w", pattern, err)
	}

	for _, file := range files {
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if err := add(path.Base(file), string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	return nil
}

func (s *Service) NewMessage() (*mail.Msg, error) {
	message := mail.NewMsg()

	var err error
	if s.config.FromName != "" {
		err = message.FromFormat(s.config.FromName, s.config.FromAddress)
	} else {
		err = message.From(s.config.FromAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}
	return message, nil
}

func (s *Service) Send(message *mail.Msg) error {
	start := time.Now()
	err := s.client.DialAndSend(message)
	elapsed := time.Since(start)

	if err != nil {
		s.logger.Error("failed to send email", zap.Error(err), zap.Duration("elapsed", elapsed))
		return err
	}

	s.logger.Info("email sent", zap.Strings("recipients", message.GetToString()), zap.Duration("elapsed", elapsed))
	return nil
}

// SendTemplate renders templateName with data and sends it to every address
// in to. The HTML part becomes the body when present, with the text part as
// its alternative.
func (s *Service) SendTemplate(templateName string, to []string, subject string, data map[string]any) error {
	message, err := s.NewMessage()
	if err != nil {
		return err
	}

	if err := message.To(to...); err != nil {
		s.logger.Warn("rejected email recipients", zap.Error(err), zap.Strings("recipients", to))
		return fmt.Errorf("failed to set TO addresses: %w", err)
	}
	message.Subject(subject)

	if err := s.render(message, templateName, data); err != nil {
		s.logger.Error("failed to render email template", zap.Error(err), zap.String("template", templateName))
		return fmt.Errorf("failed to render template: %w", err)
	}

	return s.Send(message)
}

func (s *Service) render(message *mail.Msg, templateName string, data map[string]any) error {
	html := s.html.Lookup(templateName + ".html")
	text := s.text.Lookup(templateName + ".txt")

	switch {
	case html == nil && text == nil:
		return fmt.Errorf("template '%s' not found", templateName)
	case html == nil:
		return message.SetBodyTextTemplate(text, data)
	}

	if err := message.SetBodyHTMLTemplate(html, data); err != nil {
		return err
	}
	if text != nil {
		return message.AddAlternativeTextTemplate(text, data)
	}
	return nil
}
