package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/dailywhisker/internal/config"
)

// FirebaseClients groups the Firebase Admin SDK handles built at startup.
// They are created once in main and passed down explicitly.
type FirebaseClients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
}

// Close releases the Firestore connection.
func (c *FirebaseClients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// ClientOptions resolves the credential option for Google APIs from the Firebase settings.
// A nil slice means Application Default Credentials.
func ClientOptions(cfg config.FirebaseConfig, logger *zap.Logger) ([]option.ClientOption, error) {
	switch {
	case cfg.CredentialsFile != "":
		logger.Info("Using Firebase credentials file", zap.String("path", cfg.CredentialsFile))
		if _, err := os.Stat(cfg.CredentialsFile); os.IsNotExist(err) {
			// ADC may still be configured in the environment.
			logger.Warn("Credentials file does not exist", zap.String("path", cfg.CredentialsFile))
		}
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}, nil
	case cfg.CredentialsJSONBase64 != "":
		logger.Info("Using Base64 encoded Firebase service account JSON")
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil
	default:
		logger.Info("Using Application Default Credentials for Firebase")
		return nil, nil
	}
}

// InitFirebase initializes the Firebase Admin SDK and returns the Firestore and Auth clients.
func InitFirebase(ctx context.Context, cfg config.FirebaseConfig, logger *zap.Logger) (*FirebaseClients, error) {
	opts, err := ClientOptions(cfg, logger)
	if err != nil {
		return nil, err
	}

	appConfig := &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}

	app, err := firebase.NewApp(ctx, appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	logger.Info("Firestore client initialized", zap.String("projectID", cfg.ProjectID))

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}
	logger.Info("Firebase Auth client initialized")

	return &FirebaseClients{App: app, Firestore: fsClient, Auth: authClient}, nil
}
