// Package lighttool provides interactive viewport handles for editing light
// parameters in a node-graph scene editor.
//
// A [Tool] shows handles for the lights at the selected scene locations:
// cone and penumbra angles for spot lights, width and height for quad
// lights, and radius for disk, sphere, point and cylinder lights. Dragging a
// handle edits the parameter on every selected light at once, as one undo
// step, respecting the edit scope the edits should be made in.
//
// # Collaborators
//
// The tool reads the scene through the [Scene] interface, resolves where a
// parameter is authored through a [ParameterEditor], and reads light shader
// metadata from a [Registry]. The selection and current frame live in a
// [ViewContext]. The memscene package provides in-memory implementations.
//
// # Frame loop
//
// Changes from collaborators only mark cached state dirty. Call
// [Tool.PreRender] once per frame, before drawing:
//
//	for running {
//	    handleInput(tool)
//	    if err := tool.PreRender(ctx); err != nil {
//	        log.Print(err)
//	    }
//	    draw(tool.Handles())
//	}
//
// While a drag is in progress the selection and handle inspections are
// frozen; only handle transforms follow the edited values.
//
// # Registry
//
// Light shaders are described by metadata keyed by "type:name" targets:
//
//	reg := lighttool.NewRegistry()
//	reg.RegisterValue("light:spot", "type", "spot")
//	reg.RegisterValue("light:spot", "coneAngleParameter", "coneAngle")
//	reg.RegisterValue("light:spot", "penumbraAngleParameter", "penumbraAngle")
//	reg.RegisterValue("light:spot", "penumbraType", "inset")
//
// Registries can also be loaded from YAML or TOML files and watched for
// changes with [Registry.Watch].
//
// # Angles
//
// Handle angles are measured from the light's centreline, so the cone
// handle angle is half the cone angle. [HandleAngles], [PlugConeAngle] and
// [PlugPenumbraAngle] convert between the two for each [PenumbraType].
package lighttool
