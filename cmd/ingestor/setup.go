package ingestor

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/entropyworks/loghose/pkg/ingestion"
	"github.com/entropyworks/loghose/pkg/storage"
)

// buildPipeline wires the storage client, writer and routing from viper
// configuration. Shared between the server and replay commands so a replay
// writes exactly what the server would have written.
func buildPipeline(logContext logrus.FieldLogger) (*ingestion.Pipeline, *ingestion.TenantResolver, storage.BlobStore) {
	strategy, err := storage.ParseStrategy(viper.GetString("ingestor.storage.strategy"))
	if err != nil {
		logContext.WithFields(logrus.Fields{
			"error": err,
		}).Fatal("invalid write strategy")
	}

	timePolicy, err := ingestion.ParseTimePolicy(viper.GetString("ingestor.routing.timePolicy"))
	if err != nil {
		logContext.WithFields(logrus.Fields{
			"error": err,
		}).Fatal("invalid time policy")
	}

	store, err := storage.NewBlobStore(logContext.WithField("context", "blob-store"), storage.AccountConfig{
		ConnectionString: viper.GetString("ingestor.storage.connectionString"),
		AccountName:      viper.GetString("ingestor.storage.accountName"),
		ClientID:         viper.GetString("ingestor.storage.managedIdentityClientID"),
	})
	if err != nil {
		logContext.WithFields(logrus.Fields{
			"error": err,
		}).Fatal("setting up blob store")
	}

	writer := storage.NewWriter(logContext.WithField("context", "writer"), store, storage.WriterConfig{
		Strategy:         strategy,
		AppendBasename:   viper.GetString("ingestor.append.basename"),
		ShardByPartition: viper.GetBool("ingestor.append.shardByPartition"),
		ChunkBytes:       viper.GetInt("ingestor.append.chunkBytes"),
	})

	var overrides *ingestion.TenantOverrides
	if path := viper.GetString("ingestor.tenants.overridesPath"); path != "" {
		overrides, err = ingestion.NewTenantOverrides(logContext.WithField("context", "tenant-overrides"), path)
		if err != nil {
			logContext.WithFields(logrus.Fields{
				"error": err,
				"path":  path,
			}).Fatal("loading tenant overrides")
		}
	}

	resolver := ingestion.NewTenantResolver(viper.GetString("ingestor.storage.containerPrefix"), overrides)
	recordRouter := ingestion.NewRouter(resolver, timePolicy, viper.GetBool("ingestor.routing.includeRecord"))
	pipeline := ingestion.NewPipeline(logContext.WithField("context", "pipeline"), recordRouter, writer)

	return pipeline, resolver, store
}
