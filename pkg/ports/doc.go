/*
Package ports defines the driven ports (interfaces) of the bridge core.

These interfaces decouple the translation and relay logic from external
implementations, allowing the core to work with different executor transports,
registry stores and stencil catalogs.

# Key Interfaces

  - Executor: the privileged collaborator that performs document mutations and
    queries against the live application instance.
  - RegistryStore: persistence for session shape registries (memory or Redis).
  - DistributedLocker: per-document locking across bridge replicas.
  - StencilCatalog: metadata about known stencils and their masters.
*/
package ports
