package ingestor

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/entropyworks/loghose/pkg/ingestion"
	"github.com/entropyworks/loghose/pkg/listeners"
	"github.com/entropyworks/loghose/pkg/middleware"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Run the log ingestor",
	Long: `
Receives diagnostic log batches from Event Hubs, NATS Streaming or plain
HTTP and writes them to per-tenant blob containers.

	LOG_STORAGE_CONNECTION="..." \
	EVENTHUB_CONNECTION="..." \
	go run main.go ingestor server
	`,
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetOutput(os.Stdout)

		logContext := logrus.StandardLogger()

		// fix: https://github.com/spf13/viper/issues/798
		for _, key := range viper.AllKeys() {
			viper.Set(key, viper.Get(key))
		}

		listenOn := viper.GetString("ingestor.server.listenOn")
		sharedSecret := viper.GetString("ingestor.server.secret")

		// Hide secret
		serverSettings := viper.Get("ingestor.server").(map[string]interface{})
		serverSettings["secret"] = middleware.MaskSecret(sharedSecret)
		logContext.WithFields(logrus.Fields{
			"settings": viper.Get("ingestor"),
		}).Info("start up")

		pipeline, resolver, store := buildPipeline(logContext)

		ctx := context.Background()

		if connectionString := viper.GetString("ingestor.eventhub.connectionString"); connectionString != "" {
			hub, err := listeners.ListenToEventHub(ctx, logContext.WithField("context", "eventhub-listener"), listeners.EventHubConfig{
				ConnectionString: connectionString,
				ConsumerGroup:    viper.GetString("ingestor.eventhub.consumerGroup"),
				CheckpointDir:    viper.GetString("ingestor.eventhub.checkpointDir"),
			}, pipeline)
			if err != nil {
				logContext.WithFields(logrus.Fields{
					"error": err,
				}).Fatal("starting event hub listener")
			}
			defer hub.Close(ctx)
		}

		if natsServer := viper.GetString("ingestor.log.nats.server"); natsServer != "" {
			stanConnection := listeners.SetupStan(
				logContext.WithField("context", "stan-listener"),
				natsServer,
				viper.GetString("ingestor.log.stan.clusterID"),
				viper.GetString("ingestor.log.stan.clientID"),
			)
			defer stanConnection.Close()

			subscription, err := listeners.ListenToStan(ctx,
				logContext.WithField("context", "stan-listener"),
				stanConnection,
				viper.GetString("ingestor.log.topic"),
				viper.GetString("ingestor.log.durable"),
				pipeline,
			)
			if err != nil {
				logContext.WithFields(logrus.Fields{
					"error": err,
				}).Fatal("subscribing to log topic")
			}
			defer subscription.Close()
		}

		service := ingestion.NewService(logContext.WithField("context", "ingest-service"), pipeline, resolver, store)

		router := mux.NewRouter()

		c := cors.New(cors.Options{
			OptionsPassthrough: false,
			AllowedOrigins:     []string{"*"},
			AllowedMethods: []string{
				http.MethodOptions,
				http.MethodHead,
				http.MethodGet,
				http.MethodPost,
			},
			AllowedHeaders: []string{"*", "x-secret"},
		})

		// No content-type enforcement on /ingest: broker payloads are
		// frequently plain text and still have to land as _raw records.
		stdChainBase := alice.New(c.Handler, middleware.RestrictHandler(sharedSecret))

		router.Handle(
			"/ingest",
			stdChainBase.ThenFunc(service.Ingest),
		).Methods(http.MethodPost, http.MethodOptions)

		router.Handle(
			"/tenants/{fqdn}/objects",
			stdChainBase.ThenFunc(service.GetTenantObjects),
		).Methods(http.MethodGet, http.MethodOptions)

		router.HandleFunc("/healthz", service.Healthz).Methods(http.MethodGet)
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

		srv := &http.Server{
			Handler:      router,
			Addr:         listenOn,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}

		log.Fatal(srv.ListenAndServe())
	},
}

func init() {
	RootCmd.AddCommand(serverCMD)

	viper.SetDefault("ingestor.server.secret", "change")
	viper.SetDefault("ingestor.server.listenOn", "localhost:8080")
	viper.SetDefault("ingestor.storage.connectionString", "")
	viper.SetDefault("ingestor.storage.accountName", "")
	viper.SetDefault("ingestor.storage.managedIdentityClientID", "")
	viper.SetDefault("ingestor.storage.containerPrefix", "logs-")
	viper.SetDefault("ingestor.storage.strategy", "batch")
	viper.SetDefault("ingestor.routing.timePolicy", "processing")
	viper.SetDefault("ingestor.routing.includeRecord", true)
	viper.SetDefault("ingestor.append.basename", "console.ndjson")
	viper.SetDefault("ingestor.append.shardByPartition", false)
	viper.SetDefault("ingestor.append.chunkBytes", 4194304)
	viper.SetDefault("ingestor.tenants.overridesPath", "")
	viper.SetDefault("ingestor.eventhub.connectionString", "")
	viper.SetDefault("ingestor.eventhub.consumerGroup", "$Default")
	viper.SetDefault("ingestor.eventhub.checkpointDir", "")
	viper.SetDefault("ingestor.log.nats.server", "")
	viper.SetDefault("ingestor.log.stan.clusterID", "stan")
	viper.SetDefault("ingestor.log.stan.clientID", "loghose-ingestor")
	viper.SetDefault("ingestor.log.topic", "topic.log.ingest")
	viper.SetDefault("ingestor.log.durable", "loghose-writer")

	viper.BindEnv("ingestor.server.secret", "HEADER_SECRET")
	viper.BindEnv("ingestor.server.listenOn", "LISTEN_ON")
	viper.BindEnv("ingestor.storage.connectionString", "LOG_STORAGE_CONNECTION")
	viper.BindEnv("ingestor.storage.accountName", "LOG_STORAGE_ACCOUNT_NAME")
	viper.BindEnv("ingestor.storage.managedIdentityClientID", "LOG_STORAGE_MANAGED_IDENTITY_CLIENT_ID")
	viper.BindEnv("ingestor.storage.containerPrefix", "LOG_CONTAINER_PREFIX")
	viper.BindEnv("ingestor.storage.strategy", "WRITE_STRATEGY")
	viper.BindEnv("ingestor.routing.timePolicy", "TIME_POLICY")
	viper.BindEnv("ingestor.routing.includeRecord", "INCLUDE_RECORD")
	viper.BindEnv("ingestor.append.basename", "APPEND_BASENAME")
	viper.BindEnv("ingestor.append.shardByPartition", "APPEND_SHARD_BY_PARTITION")
	viper.BindEnv("ingestor.append.chunkBytes", "APPEND_CHUNK_BYTES")
	viper.BindEnv("ingestor.tenants.overridesPath", "TENANT_OVERRIDES_PATH")
	viper.BindEnv("ingestor.eventhub.connectionString", "EVENTHUB_CONNECTION")
	viper.BindEnv("ingestor.eventhub.consumerGroup", "EVENTHUB_CONSUMER_GROUP")
	viper.BindEnv("ingestor.eventhub.checkpointDir", "EVENTHUB_CHECKPOINT_DIR")
	viper.BindEnv("ingestor.log.nats.server", "NATS_SERVER")
	viper.BindEnv("ingestor.log.stan.clusterID", "STAN_CLUSTER_ID")
	viper.BindEnv("ingestor.log.stan.clientID", "STAN_CLIENT_ID")
	viper.BindEnv("ingestor.log.topic", "TOPIC")
	viper.BindEnv("ingestor.log.durable", "STAN_DURABLE_NAME")
}
