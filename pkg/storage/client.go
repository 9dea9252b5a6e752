package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/Azure/go-autorest/autorest/adal"
	"github.com/sirupsen/logrus"
)

const storageResource = "https://storage.azure.com/"

// AccountConfig describes how to reach the storage account: either a full
// connection string, or an account name paired with the pod's managed
// identity.
type AccountConfig struct {
	ConnectionString string
	AccountName      string
	ClientID         string
}

// NewBlobStore builds the Azure-backed blob store, preferring the
// connection string and falling back to managed identity.
func NewBlobStore(logContext logrus.FieldLogger, config AccountConfig) (BlobStore, error) {
	if config.ConnectionString != "" {
		settings, err := parseConnectionString(config.ConnectionString)
		if err != nil {
			return nil, err
		}

		credential, err := azblob.NewSharedKeyCredential(settings.accountName, settings.accountKey)
		if err != nil {
			return nil, err
		}
		return newAzureBlobStore(logContext, settings.serviceURL(), credential)
	}

	if config.AccountName == "" {
		return nil, fmt.Errorf("either a connection string or an account name is required")
	}

	credential, err := managedIdentityCredential(config.ClientID)
	if err != nil {
		return nil, err
	}
	return newAzureBlobStore(logContext, fmt.Sprintf("https://%s.blob.core.windows.net", config.AccountName), credential)
}

// connectionSettings are the parts of an Azure storage connection string
// the client cares about.
type connectionSettings struct {
	accountName       string
	accountKey        string
	blobEndpoint      string
	endpointsProtocol string
	endpointSuffix    string
}

// parseConnectionString splits the semicolon-separated settings. Only the
// first "=" in a segment separates key from value, account keys are base64
// and end in padding.
func parseConnectionString(connectionString string) (connectionSettings, error) {
	settings := connectionSettings{
		endpointsProtocol: "https",
		endpointSuffix:    "core.windows.net",
	}

	for _, segment := range strings.Split(connectionString, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		key, value, found := strings.Cut(segment, "=")
		if !found {
			return settings, fmt.Errorf("malformed connection string segment %q", key)
		}

		switch key {
		case "AccountName":
			settings.accountName = value
		case "AccountKey":
			settings.accountKey = value
		case "BlobEndpoint":
			settings.blobEndpoint = value
		case "DefaultEndpointsProtocol":
			settings.endpointsProtocol = value
		case "EndpointSuffix":
			settings.endpointSuffix = value
		}
	}

	if settings.accountName == "" || settings.accountKey == "" {
		return settings, fmt.Errorf("connection string is missing AccountName or AccountKey")
	}
	return settings, nil
}

func (settings connectionSettings) serviceURL() string {
	if settings.blobEndpoint != "" {
		return settings.blobEndpoint
	}
	return fmt.Sprintf("%s://%s.blob.%s", settings.endpointsProtocol, settings.accountName, settings.endpointSuffix)
}

// managedIdentityCredential exchanges the pod's managed identity for
// storage tokens and keeps them refreshed slightly ahead of expiry.
func managedIdentityCredential(clientID string) (azblob.Credential, error) {
	options := &adal.ManagedIdentityOptions{}
	if clientID != "" {
		options.ClientID = clientID
	}

	servicePrincipalToken, err := adal.NewServicePrincipalTokenFromManagedIdentity(storageResource, options)
	if err != nil {
		return nil, err
	}
	if err := servicePrincipalToken.Refresh(); err != nil {
		return nil, err
	}

	refresher := func(credential azblob.TokenCredential) time.Duration {
		if err := servicePrincipalToken.Refresh(); err != nil {
			return time.Minute
		}
		credential.SetToken(servicePrincipalToken.Token().AccessToken)

		until := time.Until(servicePrincipalToken.Token().Expires()) - 2*time.Minute
		if until <= 0 {
			return time.Minute
		}
		return until
	}

	return azblob.NewTokenCredential(servicePrincipalToken.Token().AccessToken, refresher), nil
}
