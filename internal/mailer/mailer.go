// Package mailer sends transactional email through Amazon SES.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"scaffold/internal/middleware"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"gopkg.in/yaml.v3"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages. Send reports success and never returns an error.
type Sender interface {
	Send(ctx context.Context, msg Message) bool
	// Address is the verified operator address, empty when unconfigured.
	Address() string
}

// Config is the contents of the SES config file.
type Config struct {
	Email   string `yaml:"email"`
	Region  string `yaml:"region"`
	Charset string `yaml:"charset"`
}

// Credentials are the static AWS keys used to sign SES requests.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// LoadConfig reads and checks the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mail config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse mail config: %w", err)
	}

	var missing []string
	if cfg.Email == "" {
		missing = append(missing, "email")
	}
	if cfg.Region == "" {
		missing = append(missing, "region")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("mail config missing %s", strings.Join(missing, ", "))
	}
	if cfg.Charset == "" {
		cfg.Charset = "UTF-8"
	}
	return &cfg, nil
}

// New builds an SES sender from the config file and credentials. Any
// configuration problem is logged and yields a sender whose every Send fails.
func New(ctx context.Context, path string, creds Credentials) Sender {
	cfg, err := LoadConfig(path)
	if err != nil {
		middleware.Logger.Warn("SES disabled", slog.String("error", err.Error()))
		return disabledSender{reason: err.Error()}
	}
	if creds.AccessKey == "" || creds.SecretKey == "" {
		middleware.Logger.Warn("SES disabled", slog.String("error", "AWS_ACCESS_KEY and AWS_SECRET_KEY must be set"))
		return disabledSender{reason: "missing AWS credentials"}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, ""),
		),
	)
	if err != nil {
		middleware.Logger.Warn("SES disabled", slog.String("error", err.Error()))
		return disabledSender{reason: err.Error()}
	}

	return NewSES(sesv2.NewFromConfig(awsCfg), *cfg)
}

// SESAPI is the subset of the SES v2 client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES sends mail from the configured address.
type SES struct {
	client SESAPI
	cfg    Config
}

// NewSES wraps an SES client.
func NewSES(client SESAPI, cfg Config) *SES {
	return &SES{client: client, cfg: cfg}
}

// Address returns the configured sender address.
func (s *SES) Address() string {
	return s.cfg.Email
}

// Send delivers msg with both text and HTML bodies.
func (s *SES) Send(ctx context.Context, msg Message) bool {
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.cfg.Email),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: s.content(msg.Subject),
				Body: &types.Body{
					Html: s.content(msg.HTML),
					Text: s.content(msg.Text),
				},
			},
		},
	})
	if err != nil {
		reason := err.Error()
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			reason = apiErr.ErrorMessage()
		}
		middleware.Logger.WarnContext(ctx, "Email send failed", slog.String("error", reason))
		return false
	}

	middleware.Logger.InfoContext(ctx, "Email sent", slog.String("message_id", aws.ToString(out.MessageId)))
	return true
}

func (s *SES) content(data string) *types.Content {
	return &types.Content{
		Charset: aws.String(s.cfg.Charset),
		Data:    aws.String(data),
	}
}

type disabledSender struct {
	reason string
}

func (d disabledSender) Send(ctx context.Context, msg Message) bool {
	middleware.Logger.WarnContext(ctx, "Email not sent, SES is not configured",
		slog.String("subject", msg.Subject),
		slog.String("reason", d.reason),
	)
	return false
}

func (disabledSender) Address() string { return "" }
