package content

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/environment"
	"github.com/roach88/bourse/internal/event"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/player"
)

func quietLoader() *Loader {
	return NewLoader(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func newSim(t *testing.T) *engine.Simulation {
	t.Helper()
	sim, err := engine.New(config.Default(),
		engine.WithSeed(7),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return sim
}

func copyFile(t *testing.T, from, to string) {
	t.Helper()
	data, err := os.ReadFile(from)
	require.NoError(t, err)
	writeFile(t, to, string(data))
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func ownerNames(owners []market.Owner) []string {
	var names []string
	for _, o := range owners {
		names = append(names, o.OwnerName())
	}
	return names
}

func TestLoad_YAML(t *testing.T) {
	c, skipped, err := quietLoader().Load(filepath.Join("testdata", "world.yaml"))
	require.NoError(t, err)
	assert.Empty(t, skipped)

	require.Len(t, c.Environments, 3)
	require.Len(t, c.Tradeables, 2)
	require.Len(t, c.Events, 2)
	require.Len(t, c.Packs, 1)
	assert.Equal(t, 8, c.Len())

	fly := c.Events[0]
	assert.Equal(t, "Olive fly", fly.Name)
	require.NotNil(t, fly.Admission)
	assert.Equal(t, IntRange{Bottom: 2, Top: 5}, fly.Admission.Step)
	assert.Equal(t, []string{"Greece", "Olive groves"}, fly.Groups[0].Members)
	assert.Equal(t, map[string]float64{"player.money": -5}, c.Events[1].Effects)

	pack := c.Packs[0]
	assert.Equal(t, 2, pack.Stage)
	require.NotNil(t, pack.Levels[0].Goal.MoneyAtLeast)
	assert.Equal(t, 200.0, *pack.Levels[0].Goal.MoneyAtLeast)
	assert.Equal(t, []string{"Press"}, pack.Levels[0].Successors)
	assert.Equal(t, AwardRecord{}, pack.Levels[1].Award)
}

func TestLoad_CUE(t *testing.T) {
	c, skipped, err := quietLoader().Load(filepath.Join("testdata", "world.cue"))
	require.NoError(t, err)
	assert.Empty(t, skipped)

	require.Len(t, c.Environments, 2)
	require.Len(t, c.Events, 1)
	assert.True(t, c.Events[0].Groups[0].Positive)
	assert.Equal(t, Range{Bottom: 0.5, Top: 1.5}, c.Tradeables[0].Influence)
}

func TestLoad_DirectoryInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	copyFile(t, filepath.Join("testdata", "world.yaml"), filepath.Join(dir, "b.yaml"))
	copyFile(t, filepath.Join("testdata", "world.cue"), filepath.Join(dir, "a.cue"))
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	c, _, err := quietLoader().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a.cue"), filepath.Join(dir, "b.yaml")}, c.Files)
	assert.Equal(t, "Sicily", c.Environments[0].Name)
	assert.Equal(t, "EU", c.Environments[2].Name)
}

func TestLoad_SkipsInvalidRecords(t *testing.T) {
	c, skipped, err := quietLoader().Load(filepath.Join("testdata", "broken.yaml"))
	require.NoError(t, err)

	require.Len(t, skipped, 3)
	var names []string
	for _, e := range skipped {
		var rec *RecordError
		require.True(t, errors.As(e, &rec))
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"Atlantis", "Honey", "Drought"}, names)

	assert.Len(t, c.Environments, 1)
	assert.Len(t, c.Tradeables, 1)
	assert.Len(t, c.Events, 1)
	assert.Len(t, c.Packs, 1)
}

func TestLoad_FatalErrors(t *testing.T) {
	ld := quietLoader()

	_, _, err := ld.LoadBytes("content.json", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, _, err = ld.LoadBytes("content.yaml", []byte("markets: []\n"))
	assert.ErrorContains(t, err, `unknown section "markets"`)

	_, _, err = ld.LoadBytes("content.yaml", []byte("events: {name: x}\n"))
	assert.ErrorContains(t, err, "must be a list")

	_, _, err = ld.LoadBytes("content.cue", []byte("events: [{name: string}]\n"))
	assert.Error(t, err, "non-concrete CUE")

	_, _, err = ld.Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyDocument(t *testing.T) {
	c, skipped, err := quietLoader().LoadBytes("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Zero(t, c.Len())
}

func TestLoad_NormalizesNames(t *testing.T) {
	doc := "environments:\n" +
		"  - name: \"Cafe\u0301\"\n" +
		"    rank: location\n" +
		"tradeables:\n" +
		"  - name: Coffee\n" +
		"    value: {bottom: 1, top: 1}\n" +
		"    influence: {bottom: 1, top: 1}\n" +
		"    shares: {bottom: 1, top: 1}\n" +
		"    owners: [\"Caf\u00e9\"]\n"

	ld := quietLoader()
	c, skipped, err := ld.LoadBytes("cafe.yaml", []byte(doc))
	require.NoError(t, err)
	require.Empty(t, skipped)
	assert.Equal(t, "Caf\u00e9", c.Environments[0].Name)

	sim := newSim(t)
	inst, errs := ld.Install(c, sim)
	assert.Empty(t, errs)
	assert.Equal(t, 1, inst.Counts.Tradeables)
}

func TestInstall_World(t *testing.T) {
	ld := quietLoader()
	c, _, err := ld.Load(filepath.Join("testdata", "world.yaml"), filepath.Join("testdata", "world.cue"))
	require.NoError(t, err)

	sim := newSim(t)
	inst, errs := ld.Install(c, sim)
	require.Empty(t, errs)

	assert.Equal(t, Counts{Environments: 5, Links: 3, Tradeables: 3, Events: 3, Packs: 1, Levels: 2}, inst.Counts)

	greece, ok := sim.Graph.Get("Greece")
	require.True(t, ok)
	groves, ok := sim.Graph.Get("Olive groves")
	require.True(t, ok)
	olives, ok := sim.Market.Find("Olives")
	require.True(t, ok)
	assert.Equal(t, []string{"Olive groves", "Greece"}, ownerNames(olives.Owners()))
	assert.GreaterOrEqual(t, olives.Shares, 10)
	assert.LessOrEqual(t, olives.Shares, 30)
	assert.Equal(t, olives, sim.Graph.Intersect([]*environment.Environment{greece, groves})[0])

	require.Len(t, inst.Packs, 1)
	require.Equal(t, 1, sim.LoadPacks(inst.Packs...))
	pack := sim.Stages.Packs(2)[0]
	assert.Equal(t, "Olive oil", pack.Name)
	assert.Equal(t, "Press and sell olive oil (Greece)", pack.Label().Description)
	require.Len(t, pack.Events, 1)

	fly := pack.Events[0]
	assert.True(t, fly.IsMain())
	assert.Equal(t, event.High, fly.Priority)
	succ := fly.Successors()
	require.Len(t, succ, 1)
	assert.Equal(t, "Olive shortage", succ[0].Name)
	assert.False(t, succ[0].IsMain())
	assert.Equal(t, -5.0, succ[0].Effects[player.TargetMoney])

	levels := pack.Levels()
	require.Len(t, levels, 2)
	assert.Equal(t, 2, levels[1].Stage)

	p := player.New(config.Default().Player)
	p.Money = 200
	assert.True(t, levels[0].Passed(p))
	levels[0].Confer(p)
	assert.Equal(t, 250.0, p.Money)
	assert.False(t, levels[1].Passed(p))
}

func TestInstall_ReportsBrokenReferences(t *testing.T) {
	ld := quietLoader()
	c, _, err := ld.Load(filepath.Join("testdata", "broken.yaml"))
	require.NoError(t, err)

	sim := newSim(t)
	inst, errs := ld.Install(c, sim)

	assert.Equal(t, Counts{Environments: 1, Events: 1, Skipped: 4}, inst.Counts)
	require.Len(t, errs, 4)
	var kinds []Kind
	for _, e := range errs {
		var rec *RecordError
		require.True(t, errors.As(e, &rec))
		assert.Equal(t, filepath.Join("testdata", "broken.yaml"), rec.File)
		kinds = append(kinds, rec.Kind)
	}
	assert.Equal(t, []Kind{KindEnvironment, KindTradeable, KindEvent, KindPack}, kinds)
	assert.Contains(t, errs[0].Error(), `unknown environment "Nowhere"`)
	assert.Contains(t, errs[3].Error(), `unknown tradeable "Figs"`)
	assert.Empty(t, inst.Packs)
}

func TestInstall_RejectedLinkIsReported(t *testing.T) {
	doc := `
environments:
  - name: Athens
    rank: location
    links: [Balkans]
  - name: Balkans
    rank: group
`
	ld := quietLoader()
	c, _, err := ld.LoadBytes("ranks.yaml", []byte(doc))
	require.NoError(t, err)

	inst, errs := ld.Install(c, newSim(t))
	require.Len(t, errs, 1)
	assert.Zero(t, inst.Counts.Links)
	assert.ErrorContains(t, errs[0], "Athens")
}

func TestInstall_DuplicatesSkipped(t *testing.T) {
	ld := quietLoader()
	c, _, err := ld.Load(filepath.Join("testdata", "world.yaml"), filepath.Join("testdata", "world.yaml"))
	require.NoError(t, err)

	inst, errs := ld.Install(c, newSim(t))
	assert.Equal(t, 3, inst.Counts.Environments)
	assert.Equal(t, 2, inst.Counts.Events)
	assert.Len(t, inst.Packs, 2, "packs are distinct objects; the registry keeps both")
	assert.NotEmpty(t, errs)
}

func TestRecordError(t *testing.T) {
	err := &RecordError{File: "a.yaml", Kind: KindEvent, Index: 2, Name: "Drought", Err: io.ErrUnexpectedEOF}
	assert.Equal(t, `a.yaml: events[2] "Drought": unexpected EOF`, err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	err.Name = ""
	assert.Equal(t, "a.yaml: events[2]: unexpected EOF", err.Error())
}
