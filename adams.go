/*
Package adams computes minimal free resolutions over the mod-2 Steenrod
algebra and the multiplicative structure on the E2 page of the Adams
spectral sequence. The library features:

  - A pure Go implementation with a bit-packed Milnor-basis arithmetic core.
  - An incremental, checkpointed Gröbner-basis engine resolving a presented
    module degree by degree, deterministically for any worker count.
  - Chain-lifting passes computing products by Ext classes, chain maps
    induced by maps of complexes, and products with the Hopf classes h_i.
  - A SQLite persistence layer from which interrupted runs resume
    bit-identically.
*/
package adams
