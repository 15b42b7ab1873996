// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// DefaultKeyDisplayName names the API key looked up through ADC.
const DefaultKeyDisplayName = "WasteWise Geocoding Key"

// APIKeyFromADC retrieves the secret of the API key called displayName from
// the project of the Application Default Credentials. projectID overrides
// the credentials' project when set.
func APIKeyFromADC(ctx context.Context, projectID, displayName string) (string, error) {
	if displayName == "" {
		displayName = DefaultKeyDisplayName
	}

	if projectID == "" {
		creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return "", eris.Wrap(err, "finding default credentials")
		}

		projectID = creds.ProjectID
	}

	// user credentials without a quota project carry none
	if projectID == "" {
		return "", eris.New("no project id in default credentials; set geocoder.google.project")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", eris.Wrap(err, "creating apikeys client")
	}
	defer client.Close() //nolint:errcheck

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", eris.Wrap(err, "listing keys")
		}

		if key.GetDisplayName() != displayName {
			continue
		}

		// ListKeys redacts the secret
		zap.L().Info("found api key resource, retrieving secret", zap.String("name", key.GetName()))

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.GetName()})
		if err != nil {
			return "", eris.Wrap(err, "getting key string")
		}

		if resp.GetKeyString() == "" {
			return "", eris.Errorf("key %q found but its key string is empty", displayName)
		}

		return resp.GetKeyString(), nil
	}

	return "", eris.Errorf("key with display name %q not found in project %s", displayName, projectID)
}
