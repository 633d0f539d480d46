package trial

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/config"
	"github.com/soa-sim/mctrial/internal/geo"
	"github.com/soa-sim/mctrial/internal/laydown"
	"github.com/soa-sim/mctrial/internal/placement"
	"github.com/soa-sim/mctrial/internal/remoteid"
	"github.com/soa-sim/mctrial/internal/sampling"
	"github.com/soa-sim/mctrial/pkg/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	trials []*core.Trial
	failAt int // 1-based trial index to fail on, 0 never

	begun, ended int
	endWritten   int
}

func (w *recordingWriter) WriteTrial(t *core.Trial) error {
	if w.failAt == t.Index {
		return errors.New("disk full")
	}
	w.trials = append(w.trials, t)
	return nil
}

type bracketWriter struct {
	recordingWriter
	runID string
}

func (w *bracketWriter) BeginBatch(runID string, numTrials int) error {
	w.begun++
	w.runID = runID
	return nil
}

func (w *bracketWriter) EndBatch(runID string, written int) error {
	w.ended++
	w.endWritten = written
	return nil
}

// failingPlacer delegates to an engine until its call budget runs out.
type failingPlacer struct {
	inner Placer
	calls int
	after int
}

func (p *failingPlacer) Generate(spec laydown.Spec) ([]core.Position3D, error) {
	p.calls++
	if p.calls > p.after {
		return nil, &placement.UnsatisfiableError{Category: spec.Category, Attempts: 10}
	}
	return p.inner.Generate(spec)
}

// testEnv is an all-land 21x21 grid so the stock laydowns always place.
func testEnv() *core.Environment {
	var land []core.Cell
	for x := 0; x <= 20; x++ {
		for z := 0; z <= 20; z++ {
			land = append(land, core.Cell{X: x, Z: z})
		}
	}
	return &core.Environment{
		GridToWorldScale: 1,
		LandCells:        land,
		WaterCells:       []core.Cell{{X: 21, Z: 21}},
		RedBaseCells:     []core.Cell{{X: 2, Z: 2}, {X: 3, Z: 2}},
		BlueBaseCells:    []core.Cell{{X: 10, Z: 10}},
		NGOSiteCells:     []core.Cell{{X: 5, Z: 5}},
		VillageCells:     []core.Cell{{X: 12, Z: 4}},
	}
}

func stockLaydowns(t *testing.T, env *core.Environment) laydown.Set {
	t.Helper()
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	set, err := laydown.Build(env, config.GetLaydownConfigs())
	require.NoError(t, err)
	return set
}

func testConfig() Config {
	return Config{
		RunID:            "run-1",
		ConfigFileHeader: "MCConfig_",
		LoggerFileHeader: "MCOutput_",
		RedRoomHeader:    "soa-mc-red_",
		BlueRoomHeader:   "soa-mc-blue_",
		LogEvents:        true,
		LogToConsole:     false,
	}
}

func newOrchestrator(t *testing.T, seed int64, set laydown.Set, w Writer, wrap func(Placer) Placer) *Orchestrator {
	t.Helper()
	src, _ := sampling.NewSource(seed)
	s := sampling.New(src)
	engine, err := placement.New(s, geo.GridMath{Scale: 1}, 1000, zerolog.Nop())
	require.NoError(t, err)

	var p Placer = engine
	if wrap != nil {
		p = wrap(engine)
	}
	o, err := New(testConfig(), Deps{
		Laydowns: set,
		Placer:   p,
		Sampler:  s,
		IDs:      remoteid.New(200),
		Writer:   w,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return o
}

func TestRunBatch_NamingAndLoggerSettings(t *testing.T) {
	w := &recordingWriter{}
	o := newOrchestrator(t, 1, stockLaydowns(t, testEnv()), w, nil)

	trials, err := o.RunBatch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, trials, 10)
	assert.Equal(t, trials, w.trials)

	tr := trials[2]
	assert.Equal(t, 3, tr.Index)
	assert.Equal(t, "run-1", tr.RunID)
	assert.Equal(t, "MCConfig_03", tr.Name)
	assert.Equal(t, "soa-mc-red_03", tr.Network.RedRoom)
	assert.Equal(t, "soa-mc-blue_03", tr.Network.BlueRoom)
	assert.Equal(t, core.LoggerConfig{
		OutputFile:            "MCOutput_03",
		EnableLogToFile:       true,
		EnableLogEventsToFile: true,
		EnableLogToConsole:    false,
	}, tr.Logger)
	assert.Equal(t, 0.5, tr.Simulation.ProbRedDismountWeaponized)
	assert.Equal(t, 0.5, tr.Simulation.ProbRedTruckWeaponized)
	assert.Equal(t, "MCConfig_10", trials[9].Name)
}

func TestRunBatch_CountsWithinBounds(t *testing.T) {
	env := testEnv()
	set := stockLaydowns(t, env)
	w := &recordingWriter{}
	o := newOrchestrator(t, 2, set, w, nil)

	trials, err := o.RunBatch(context.Background(), 50)
	require.NoError(t, err)

	land := env.LandSet()
	g := geo.GridMath{Scale: 1}
	for _, tr := range trials {
		counts := tr.CountByCategory()
		for c, spec := range set {
			assert.GreaterOrEqual(t, float64(counts[c]), spec.CountMin, "%s in %s", c, tr.Name)
			assert.LessOrEqual(t, float64(counts[c]), spec.CountMax, "%s in %s", c, tr.Name)
		}
		for _, e := range tr.Local {
			assert.True(t, land.Contains(g.WorldToGrid(e.Pos().X, e.Pos().Z)))
			assert.Equal(t, 0.6, e.Pos().Y)
			assert.False(t, e.Category().IsRemote())
		}
		for _, e := range tr.Remote {
			assert.True(t, e.Category().IsRemote())
		}
		// blue police and balloon are pinned to exactly one
		assert.Equal(t, 1, counts[core.CategoryBluePolice])
		assert.Equal(t, 1, counts[core.CategoryBalloon])
	}
}

func TestRunBatch_RemoteIDsAreContiguousAcrossTrials(t *testing.T) {
	w := &recordingWriter{}
	o := newOrchestrator(t, 3, stockLaydowns(t, testEnv()), w, nil)

	trials, err := o.RunBatch(context.Background(), 20)
	require.NoError(t, err)

	next := 200
	for _, tr := range trials {
		var last core.Category
		for _, e := range tr.Remote {
			id, ok := core.RemoteID(e)
			require.True(t, ok)
			require.Equal(t, next, id)
			require.GreaterOrEqual(t, e.Category(), last, "remote categories keep their order")
			last = e.Category()
			next++
		}
		for _, e := range tr.Local {
			_, ok := core.RemoteID(e)
			assert.False(t, ok)
		}
	}
	assert.Greater(t, next, 200)
}

func TestRunBatch_WeaponFrequency(t *testing.T) {
	set := stockLaydowns(t, testEnv())
	for c, p := range map[core.Category]float64{core.CategoryRedDismount: 0.3, core.CategoryRedTruck: 0.8} {
		spec := set[c]
		spec.CountMean, spec.CountStdDev, spec.CountMin, spec.CountMax = 10, 0, 10, 10
		spec.ProbWeaponized = p
		set[c] = spec
	}

	w := &recordingWriter{}
	o := newOrchestrator(t, 4, set, w, nil)
	trials, err := o.RunBatch(context.Background(), 400)
	require.NoError(t, err)

	armed := map[core.Category]int{}
	total := map[core.Category]int{}
	for _, tr := range trials {
		for _, e := range tr.Local {
			if a, ok := core.Armed(e); ok {
				total[e.Category()]++
				if a {
					armed[e.Category()]++
				}
			}
		}
	}

	require.Equal(t, 4000, total[core.CategoryRedDismount])
	require.Equal(t, 4000, total[core.CategoryRedTruck])
	assert.InDelta(t, 0.3, float64(armed[core.CategoryRedDismount])/4000, 0.03)
	assert.InDelta(t, 0.8, float64(armed[core.CategoryRedTruck])/4000, 0.03)
	assert.Equal(t, 0.8, trials[0].Simulation.ProbRedTruckWeaponized)
}

func TestGenerate_SingleAnchorZeroOffset(t *testing.T) {
	env := testEnv()
	set := stockLaydowns(t, env)
	for _, c := range categories() {
		set[c] = laydown.Spec{
			Category:       c,
			CountMean:      0,
			CountMin:       0,
			CountMax:       0,
			AltitudeMeanKm: 0.6,
			AltitudeMinKm:  0.6,
			AltitudeMaxKm:  0.6,
			Anchors:        []core.Cell{{X: 0, Z: 0}},
			Allowed:        env.LandSet(),
		}
	}
	solo := set[core.CategoryHeavyUAV]
	solo.CountMean, solo.CountMin, solo.CountMax = 1, 1, 1
	solo.Anchors = []core.Cell{{X: 7, Z: 9}}
	set[core.CategoryHeavyUAV] = solo

	o := newOrchestrator(t, 5, set, &recordingWriter{}, nil)
	tr, err := o.Generate(1, 1)
	require.NoError(t, err)

	assert.Empty(t, tr.Local)
	require.Len(t, tr.Remote, 1)
	assert.Equal(t, core.HeavyUAV{Position: core.Position3D{X: 7, Y: 0.6, Z: 9}, ID: 200}, tr.Remote[0])
	assert.Equal(t, "MCConfig_1", tr.Name)
}

func TestRunBatch_Reproducible(t *testing.T) {
	set := stockLaydowns(t, testEnv())

	a := &recordingWriter{}
	_, err := newOrchestrator(t, 77, set, a, nil).RunBatch(context.Background(), 5)
	require.NoError(t, err)

	b := &recordingWriter{}
	_, err = newOrchestrator(t, 77, set, b, nil).RunBatch(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, a.trials, b.trials)
}

func TestRunBatch_UnsatisfiableAbortsRun(t *testing.T) {
	w := &recordingWriter{}
	// eight placer calls per trial; the third trial fails on its first category
	o := newOrchestrator(t, 6, stockLaydowns(t, testEnv()), w, func(p Placer) Placer {
		return &failingPlacer{inner: p, after: 16}
	})

	trials, err := o.RunBatch(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, placement.ErrUnsatisfiable))
	assert.Contains(t, err.Error(), "trial 3")
	assert.Len(t, trials, 2)
	assert.Len(t, w.trials, 2, "earlier trials stay written")
}

func TestRunBatch_WriterErrorAbortsRun(t *testing.T) {
	w := &recordingWriter{failAt: 4}
	o := newOrchestrator(t, 7, stockLaydowns(t, testEnv()), w, nil)

	trials, err := o.RunBatch(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "MCConfig_04")
	assert.Len(t, trials, 3)
}

func TestRunBatch_ContextCancelled(t *testing.T) {
	w := &recordingWriter{}
	o := newOrchestrator(t, 8, stockLaydowns(t, testEnv()), w, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trials, err := o.RunBatch(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, trials)
	assert.Empty(t, w.trials)
}

func TestRunBatch_BatchWriterBracketsRun(t *testing.T) {
	w := &bracketWriter{}
	o := newOrchestrator(t, 9, stockLaydowns(t, testEnv()), w, nil)

	_, err := o.RunBatch(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, w.begun)
	assert.Equal(t, 1, w.ended)
	assert.Equal(t, 4, w.endWritten)
	assert.Equal(t, "run-1", w.runID)

	w = &bracketWriter{recordingWriter: recordingWriter{failAt: 2}}
	o = newOrchestrator(t, 9, stockLaydowns(t, testEnv()), w, nil)
	_, err = o.RunBatch(context.Background(), 4)
	require.Error(t, err)
	assert.Equal(t, 1, w.ended, "end is sent even when the run aborts")
	assert.Equal(t, 1, w.endWritten)
}

func TestRunBatch_NoTrials(t *testing.T) {
	w := &recordingWriter{}
	o := newOrchestrator(t, 10, stockLaydowns(t, testEnv()), w, nil)

	trials, err := o.RunBatch(context.Background(), 0)
	assert.NoError(t, err)
	assert.Nil(t, trials)
}

func TestNew_Validation(t *testing.T) {
	set := stockLaydowns(t, testEnv())
	src, _ := sampling.NewSource(1)
	s := sampling.New(src)
	engine, err := placement.New(s, geo.GridMath{Scale: 1}, 0, zerolog.Nop())
	require.NoError(t, err)

	deps := Deps{Laydowns: set, Placer: engine, Sampler: s, IDs: remoteid.New(1), Writer: &recordingWriter{}}

	o, err := New(Config{}, deps)
	require.NoError(t, err)
	assert.Len(t, o.RunID(), 36, "run id defaults to a uuid")

	missing := deps
	missing.Writer = nil
	_, err = New(Config{}, missing)
	assert.Error(t, err)

	partial := laydown.Set{}
	for c, sp := range set {
		partial[c] = sp
	}
	delete(partial, core.CategoryBalloon)
	missing = deps
	missing.Laydowns = partial
	_, err = New(Config{}, missing)
	assert.Error(t, err)
}
