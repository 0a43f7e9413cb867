package commands

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	graphUsecase "github.com/devkral/secretgraph/internal/graph/usecase"
)

// CreateClusterResult is the output of create-cluster.
type CreateClusterResult struct {
	ID       string `json:"id"`
	GlobalID string `json:"globalId"`
	Token    string `json:"token"`
}

// RunCreateCluster bootstraps a cluster guarded by a manage action under a
// freshly generated key and prints the token unlocking it. The key is never
// stored in plain form, so the printed token is the only way in.
//
// Requirements: Database must be migrated and accessible.
func RunCreateCluster(
	ctx context.Context,
	clusterUseCase graphUsecase.ClusterUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name, description string,
	public bool,
	format string,
) error {
	logger.Info("creating cluster", slog.String("name", name), slog.Bool("public", public))

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate cluster key: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"action": authzDomain.ActionManage})
	if err != nil {
		return fmt.Errorf("failed to encode manage action: %w", err)
	}

	cluster, err := clusterUseCase.Create(ctx, graphUsecase.Access{}, graphUsecase.CreateClusterInput{
		Name:        name,
		Description: description,
		Public:      public,
		Actions:     []graphUsecase.ActionInput{{Key: key, Payload: payload}},
	})
	if err != nil {
		return fmt.Errorf("failed to create cluster: %w", err)
	}

	result := CreateClusterResult{
		ID:       cluster.FlexID.String(),
		GlobalID: graphDomain.EncodeGlobalID(string(graphDomain.KindCluster), cluster.FlexID.String()),
		Token:    authzDomain.Token{ClusterFlexID: cluster.FlexID, Key: key}.String(),
	}

	if format == "json" {
		if err := outputJSON(writer, result); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Cluster ID: %s\n", result.ID)
		_, _ = fmt.Fprintf(writer, "Global ID: %s\n", result.GlobalID)
		_, _ = fmt.Fprintf(writer, "Token: %s\n", result.Token)
		_, _ = fmt.Fprintln(writer, "\nWARNING: Save the token securely. It cannot be recovered.")
	}

	logger.Info("cluster created successfully", slog.String("cluster_id", result.ID))
	return nil
}
