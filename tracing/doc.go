// Package tracing provides hooks that observe a texture cache table.
//
// Tracers are attached with AcceptHook before the command stream starts.
// They receive tmem.HookPosClassificationChange and tmem.HookPosFinalize
// events:
//
//	t := tmem.MakeBuilder().Build("TMEM")
//	t.AcceptHook(tracing.NewLogTracer(log.New(os.Stderr, "", 0)))
//	t.AcceptHook(tracing.NewDBTracer(datarecording.New("trace")))
package tracing
