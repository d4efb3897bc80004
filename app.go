package terrain

import (
	"fmt"
	"reflect"
	"runtime"
	"time"
)

// systemFn is any function system a module schedules via System(...).InStage(...).
// Its parameter types are resolved by callSystemInternal through reflection:
// *Commands, or a pointer to a registered resource.
type systemFn any

// App is the reflection-driven ECS/scheduler at the root of the engine: it
// owns the entity-component store, the stage-ordered system schedule, and
// the resource map modules populate during Install. TerrainModule (see
// mod_terrain.go) is one Module among several installed on it.
type App struct {
	stateful            bool
	stateMachineStarted bool
	stateTransitioning  bool
	built               bool

	initialState State
	finalState   State
	nextState    State
	state        State

	stages           []Stage
	systems          map[string]map[State]map[statePhase][]systemFn
	systemsStateless map[string][]systemFn

	resources map[reflect.Type]any
	ecs       *Ecs
	modules   []Module

	pendingAdditions    []pendingAdd
	pendingCompAdds     []pendingCompAdd
	pendingCompRemovals []pendingCompRemoval
	pendingRemovals     []EntityId
}

const STATELESS_STATE State = 0

// pendingAdd, pendingCompAdd, pendingCompRemoval buffer the structural ECS
// edits a Commands issues during a system call. They are applied once every
// stage of the current sweep has run (flushCommands), so a system never
// observes the archetype table mutate out from under an in-flight query.
type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompAdd struct {
	eid        EntityId
	components []any
}

type pendingCompRemoval struct {
	eid        EntityId
	components []any
}

type Module interface {
	Install(app *App, commands *Commands)
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Run builds the app (installing modules, if not already built) and drives
// the main loop until a stateful app reaches its final state. A stateless
// app runs forever, one stage sweep per iteration.
func (app *App) Run() {
	if !app.built {
		app.build()
		app.built = true
	}

	if app.stateful {
		app.runStateful()
	} else {
		app.runStateless()
	}
}

func (app *App) runStateful() {
	fmt.Println("Running in stateful mode...")

	app.executeChangeState(app.initialState)

	for {
		for _, stage := range app.stages {
			app.callStatelessSystems(stage)
			app.callStatefulSystems(stage, app.state, execute)
		}
		app.flushCommands()

		if app.stateTransitioning {
			app.stateTransitioning = false
			app.executeChangeState(app.nextState)
		}

		if app.state == app.finalState {
			break
		}
	}

	for _, stage := range app.stages {
		app.callStatefulSystems(stage, app.state, exit)
	}
	app.flushCommands()
}

func (app *App) runStateless() {
	fmt.Println("Running in stateless mode...")

	for {
		for _, stage := range app.stages {
			app.callStatelessSystems(stage)
		}
		app.flushCommands()
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	if !app.stateMachineStarted {
		app.stateMachineStarted = true

		app.state = newState
		for _, stage := range app.stages {
			app.callStatefulSystems(stage, app.state, enter)
		}
	} else {
		for _, stage := range app.stages {
			app.callStatefulSystems(stage, app.state, exit)
		}
		app.state = newState
		for _, stage := range app.stages {
			app.callStatefulSystems(stage, app.state, enter)
		}
	}
	app.flushCommands()
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// flushCommands applies every structural edit buffered by Commands since the
// last flush. Called once per stage sweep so systems within the same stage
// never see a partially-mutated archetype table from a sibling system.
func (app *App) flushCommands() {
	for _, pa := range app.pendingAdditions {
		app.ecs.insertEntity(pa.eid, pa.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, pca := range app.pendingCompAdds {
		app.ecs.addComponents(pca.eid, pca.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, pcr := range app.pendingCompRemovals {
		app.ecs.removeComponents(pcr.eid, pcr.components...)
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]

	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]
}

func (app *App) callStatelessSystems(stage Stage) {
	for _, system := range app.systemsStateless[stage.Name] {
		app.callSystem(system)
	}
}

func (app *App) callStatefulSystems(stage Stage, state State, phase statePhase) {
	systemsInStage, ok := app.systems[stage.Name]
	if !ok {
		return
	}
	systemsInState, ok := systemsInStage[state]
	if !ok {
		return
	}
	for _, system := range systemsInState[phase] {
		app.callSystem(system)
	}
}

func (app *App) callSystem(system systemFn) {
	start := time.Now()

	app.callSystemInternal(system)

	fmt.Println(
		"system ",
		runtime.FuncForPC(reflect.ValueOf(system).Pointer()).Name(),
		": ",
		time.Since(start).Milliseconds(),
		"ms",
	)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystemInternal(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			resourceVal := reflect.ValueOf(resource)
			typedResourceVal := reflect.NewAt(underlyingType, resourceVal.UnsafePointer())

			args[i] = typedResourceVal
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			println(msg)
			panic(msg)
		}
	}
	systemValue.Call(args)
}
