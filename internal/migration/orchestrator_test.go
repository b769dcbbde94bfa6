package migration

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/poktwallet/internal/keys"
	"github.com/mrz1836/poktwallet/internal/metrics"
	"github.com/mrz1836/poktwallet/internal/network"
	"github.com/mrz1836/poktwallet/internal/store"
	"github.com/mrz1836/poktwallet/internal/wallet"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

type fixture struct {
	orch     *Orchestrator
	registry *wallet.Registry
	service  *fakeService
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	s := store.NewMemoryStore()
	m := &metrics.Metrics{}
	reg := wallet.NewRegistry(s, nil, wallet.WithRegistryMetrics(m))
	resolver, err := network.New(ctx, s, reg, network.Prefixes{Mainnet: "pokt", Testnet: "pokt"}, nil)
	require.NoError(t, err)

	deriver := keys.NewDeriver()
	importer := wallet.NewImporter(deriver, reg, resolver, wallet.Prefixes{Shannon: "pokt"}, nil, wallet.WithImporterMetrics(m))

	svc := newFakeService()
	srv := svc.start(t)

	orch := NewOrchestrator(Dependencies{
		Importer: importer,
		Registry: reg,
		Deriver:  deriver,
		Resolver: resolver,
		Remote:   NewClient(&ClientOptions{BaseURL: srv.URL, Timeout: 5 * time.Second, Metrics: m}),
		Metrics:  m,
	})
	return &fixture{orch: orch, registry: reg, service: svc, metrics: m}
}

func jsonWalletInput() string {
	return `{"addr":"` + testMorseAddr + `","name":"w1","priv":"secretkey"}`
}

// ready drives a session up to AwaitingConfirmation.
func (f *fixture) ready(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	s := f.orch.NewSession()
	_, err := s.ImportSource(ctx, jsonWalletInput(), "")
	require.NoError(t, err)
	_, err = s.ProvisionDestination(ctx, "")
	require.NoError(t, err)
	require.Equal(t, StageAwaitingConfirmation, s.Snapshot().Stage)
	return s
}

func TestSession_HappyPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	s := f.orch.NewSession()

	assert.Equal(t, StageAwaitingSourceImport, s.Snapshot().Stage)

	res, err := s.ImportSource(ctx, jsonWalletInput(), "")
	require.NoError(t, err)
	assert.Equal(t, testMorseAddr, res.Record.Address)
	assert.Equal(t, StageAwaitingDestinationProvision, s.Snapshot().Stage)

	p, err := s.ProvisionDestination(ctx, "")
	require.NoError(t, err)
	assert.False(t, p.Reused)
	assert.Equal(t, 24, keys.WordCount(p.Mnemonic))
	assert.Equal(t, p.Mnemonic, p.Record.SerializedSecret)
	assert.Equal(t, wallet.OriginGenerated, p.Record.SecretOrigin)
	assert.Equal(t, "pokt", keys.AddressPrefix(p.Record.Address))

	out, err := s.ConfirmMigrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, testMorseAddr, out.SourceAddress)
	assert.Equal(t, p.Record.Address, out.DestinationAddress)
	assert.Equal(t, network.Resolution{AccountModel: wallet.ModelMorse, Source: network.SourceMorseRecord}, out.Network)
	assert.Contains(t, string(out.Response), "ABC")

	snap := s.Snapshot()
	assert.Equal(t, StageCompleted, snap.Stage)
	require.NoError(t, snap.LastError)

	post := f.service.lastPost(t)
	var secret StructuredSecret
	require.NoError(t, json.Unmarshal([]byte(post.MorsePrivateKey), &secret))
	assert.Equal(t, StructuredSecret{Addr: testMorseAddr, Name: "w1", Priv: "secretkey"}, secret)
	assert.Equal(t, ShannonAddress{Address: p.Record.Address, Signature: p.Mnemonic}, post.ShannonAddress)
	assert.Equal(t, int64(1), f.metrics.Snapshot().MigrationsCompleted)
}

func TestSession_RawSecretPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	s := f.orch.NewSession()

	hexKey := strings.Repeat("11", 64)
	_, err := s.ImportSource(ctx, "0x"+strings.ToUpper(hexKey), "")
	require.NoError(t, err)
	_, err = s.ProvisionDestination(ctx, "")
	require.NoError(t, err)
	_, err = s.ConfirmMigrate(ctx)
	require.NoError(t, err)

	assert.Equal(t, hexKey, f.service.lastPost(t).MorsePrivateKey)
}

func TestSession_ContainerPayloadCarriesOpeningPassphrase(t *testing.T) {
	t.Parallel()

	keyHex := strings.Repeat("42", 64)
	tests := []struct {
		name     string
		sealWith string
		typed    string
		wantPass string
	}{
		{"typed passphrase opens", "hunter2", "hunter2", "hunter2"},
		{"empty passphrase retry opens", "", "wrongpw", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newFixture(t)

			c, err := keys.SealContainer([]byte(keyHex), tt.sealWith, "")
			require.NoError(t, err)

			s := f.orch.NewSession()
			res, err := s.ImportSource(ctx, c.String(), tt.typed)
			require.NoError(t, err)
			_, err = s.ProvisionDestination(ctx, "")
			require.NoError(t, err)
			_, err = s.ConfirmMigrate(ctx)
			require.NoError(t, err)

			var secret StructuredSecret
			require.NoError(t, json.Unmarshal([]byte(f.service.lastPost(t).MorsePrivateKey), &secret))
			assert.Equal(t, tt.wantPass, secret.Pass)
			assert.Equal(t, res.Record.Address, secret.Addr)
			assert.Equal(t, c.String(), secret.Priv)
		})
	}
}

func TestSession_StageGuards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	s := f.orch.NewSession()

	_, err := s.ProvisionDestination(ctx, "")
	require.ErrorIs(t, err, walleterr.ErrInvalidStage)
	_, err = s.ConfirmMigrate(ctx)
	require.ErrorIs(t, err, walleterr.ErrInvalidStage)
	assert.Equal(t, StageAwaitingSourceImport, s.Snapshot().Stage)
	require.NoError(t, s.Snapshot().LastError)

	_, err = s.ImportSource(ctx, jsonWalletInput(), "")
	require.NoError(t, err)
	_, err = s.ImportSource(ctx, jsonWalletInput(), "")
	require.ErrorIs(t, err, walleterr.ErrInvalidStage)
	_, err = s.ConfirmMigrate(ctx)
	require.ErrorIs(t, err, walleterr.ErrInvalidStage)
	assert.Equal(t, StageAwaitingDestinationProvision, s.Snapshot().Stage)
	assert.Zero(t, f.service.postCount())
}

func TestSession_ImportFailureKeepsStage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	s := f.orch.NewSession()

	words := strings.Fields(testMnemonic)
	_, err := s.ImportSource(ctx, strings.Join(words[:11], " "), "")
	require.ErrorIs(t, err, walleterr.ErrImportFailed)

	snap := s.Snapshot()
	assert.Equal(t, StageAwaitingSourceImport, snap.Stage)
	require.ErrorIs(t, snap.LastError, walleterr.ErrImportFailed)
	assert.Contains(t, snap.LastError.Error(), "11")

	_, err = s.ImportSource(ctx, jsonWalletInput(), "")
	require.NoError(t, err)
	require.NoError(t, s.Snapshot().LastError)
}

func TestSession_PocketdUnavailableSkipsPost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.service.healthBody = `{"status":"ok","pocketd":{"available":false,"error":"missing binary"}}`
	s := f.ready(t)

	_, err := s.ConfirmMigrate(ctx)
	require.ErrorIs(t, err, walleterr.ErrServiceMisconfigured)
	assert.Contains(t, err.Error(), "missing binary")

	snap := s.Snapshot()
	assert.Equal(t, StageFailed, snap.Stage)
	require.ErrorIs(t, snap.LastError, walleterr.ErrServiceMisconfigured)
	assert.Zero(t, f.service.postCount())
	assert.Equal(t, int64(1), f.metrics.Snapshot().MigrationsFailed)
}

func TestSession_NestedFailureIsTerminal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.service.migrateBody = `{"success":true,"data":{"result":{"success":false,"error":"insufficient funds"}}}`
	s := f.ready(t)

	_, err := s.ConfirmMigrate(ctx)
	require.ErrorIs(t, err, walleterr.ErrMigrationRejected)

	snap := s.Snapshot()
	assert.Equal(t, StageFailed, snap.Stage)
	assert.Contains(t, snap.LastError.Error(), "insufficient funds")

	// Terminal: nothing but Reset is accepted, and committed imports remain.
	_, err = s.ConfirmMigrate(ctx)
	require.ErrorIs(t, err, walleterr.ErrInvalidStage)
	assert.Equal(t, 1, f.service.postCount())

	list, err := f.registry.List(ctx, wallet.ModelMorse)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSession_HandOffFailureStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr *walleterr.WalletError
	}{
		{"gateway", http.StatusBadGateway, `{"error":"Bad Gateway"}`, walleterr.ErrNetworkUnavailable},
		{"tool", http.StatusInternalServerError, `{"details":"pocketd: command not found"}`, walleterr.ErrServiceMisconfigured},
		{"generic", http.StatusBadRequest, `{"error":"already claimed"}`, walleterr.ErrMigrationRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.service.migrateStatus = tt.status
			f.service.migrateBody = tt.body
			s := f.ready(t)

			_, err := s.ConfirmMigrate(context.Background())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StageFailed, s.Snapshot().Stage)
		})
	}
}

func TestSession_Reset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.service.migrateBody = `{"success":false,"error":"nope"}`
	s := f.ready(t)

	_, err := s.ConfirmMigrate(ctx)
	require.Error(t, err)

	s.Reset()
	snap := s.Snapshot()
	assert.Equal(t, Snapshot{Stage: StageAwaitingSourceImport, StageName: "awaiting-source-import"}, snap)

	// A fresh run reuses the destination created by the first one.
	_, err = s.ImportSource(ctx, jsonWalletInput(), "")
	require.NoError(t, err)
	p, err := s.ProvisionDestination(ctx, "")
	require.NoError(t, err)
	assert.True(t, p.Reused)
	assert.Empty(t, p.Mnemonic)
}

func TestProvision_SealsMnemonicWithPassphrase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	s := f.orch.NewSession()

	_, err := s.ImportSource(ctx, jsonWalletInput(), "")
	require.NoError(t, err)
	p, err := s.ProvisionDestination(ctx, "hunter2")
	require.NoError(t, err)

	c := wallet.Classify(p.Record.SerializedSecret)
	require.Equal(t, wallet.KindPPK, c.Kind)

	container, err := keys.ParseContainer(p.Record.SerializedSecret)
	require.NoError(t, err)
	plain, err := container.Open("hunter2")
	require.NoError(t, err)
	assert.Equal(t, p.Mnemonic, string(plain))
}

func TestProvision_PrefersActiveShannonWallet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	first := wallet.NewRecord(wallet.ModelShannon, "pokt1first", "s1", wallet.OriginGenerated)
	second := wallet.NewRecord(wallet.ModelShannon, "pokt1second", "s2", wallet.OriginGenerated)
	for _, r := range []*wallet.Record{first, second} {
		_, _, err := f.registry.Upsert(ctx, wallet.ModelShannon, r)
		require.NoError(t, err)
	}

	s := f.orch.NewSession()
	_, err := s.ImportSource(ctx, jsonWalletInput(), "")
	require.NoError(t, err)

	// The import made the Morse wallet active, so the most recent is used.
	p, err := s.ProvisionDestination(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "pokt1second", p.Record.Address)

	s.Reset()
	_, err = s.ImportSource(ctx, jsonWalletInput(), "")
	require.NoError(t, err)
	require.NoError(t, f.registry.SetActive(ctx, "pokt1first"))
	p, err = s.ProvisionDestination(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "pokt1first", p.Record.Address)
}

func TestStageString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "completed", StageCompleted.String())
	assert.Equal(t, "failed", StageFailed.String())
	assert.Equal(t, "unknown", Stage(42).String())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageAwaitingConfirmation.Terminal())
}
