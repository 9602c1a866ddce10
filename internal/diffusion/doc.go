// Package diffusion provides the explicit finite-difference integrator for
// the one-dimensional linear diffusion equation
//
//	∂C/∂t = D ∂²C/∂x²
//
// discretised with the forward-time centered-space (FTCS) scheme:
//
//	C'[i] = C[i] + (D·dt/dx²)·(C[i-1] - 2·C[i] + C[i+1])
//
// The package defines the fundamental types and operations:
//
//   - [Grid]: immutable, equally spaced coordinates x[i] = i·dx
//   - [Field]: concentration values, one per grid point
//   - [Params]: diffusivity, domain, spacing, boundary values, step count
//   - [Initialize]: step-function initial condition centered at Lx/2
//   - [Step], [Run]: pure single-step and n-step integration
//   - [Integrator]: double-buffered stepper for incremental stepping
//   - [Simulator]: orchestrates a full run with metrics and observers
//
// # Example
//
//	p := diffusion.DefaultParams()
//	s, _ := diffusion.New(p)
//	result, _ := s.Run()
//	fmt.Println(result.Final[len(result.Final)/2])
//
// # Stability
//
// FTCS is conditionally stable. The caller chooses dt; [StableDt] gives the
// largest stable value 0.5·dx²/D and [CheckStability] reports a
// [StabilityWarning] when it is exceeded. [Step] and [Run] never check.
//
// # Thread Safety
//
// A run is strictly sequential. Simulator and Integrator instances are NOT
// thread-safe; run independent simulations on separate instances.
package diffusion
