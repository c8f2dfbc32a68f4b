package firestore

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

type FirestoreClient struct {
	client *firestore.Client
}

func NewFirestoreClient(ctx context.Context, projectID string) (*FirestoreClient, error) {
	var client *firestore.Client
	var err error

	// Cloud Run環境の検出
	isCloudRun := os.Getenv("K_SERVICE") != ""

	if isCloudRun {
		// Cloud Run環境ではデフォルト認証を使用
		log.Printf("☁️ Cloud Run環境: デフォルト認証を使用")
		client, err = firestore.NewClient(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("デフォルト認証でのFirestoreクライアント作成に失敗: %w", err)
		}
		log.Printf("✅ Firestoreクライアントを初期化: project=%s (Cloud Runデフォルト認証)", projectID)
	} else {
		// ローカル環境では環境変数またはファイルから認証
		credentialsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

		if credentialsFile == "" {
			credentialsFile = "meguri-firestore-key.json"
		}

		if _, fileErr := os.Stat(credentialsFile); fileErr != nil {
			log.Printf("⚠️ 認証ファイルが見つかりません: %s、デフォルト認証を試します", credentialsFile)
			client, err = firestore.NewClient(ctx, projectID)
		} else {
			log.Printf("📄 認証ファイルを使用: %s", credentialsFile)
			opt := option.WithCredentialsFile(credentialsFile)
			client, err = firestore.NewClient(ctx, projectID, opt)
		}

		if err != nil {
			return nil, fmt.Errorf("Firestoreクライアントの作成に失敗: %w", err)
		}
		log.Printf("✅ Firestoreクライアントを初期化: project=%s", projectID)
	}

	return &FirestoreClient{client: client}, nil
}

func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}
