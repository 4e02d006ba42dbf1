package wrap

// Helper routines shared by all wrappers of a module. Each is emitted at
// most once, after the procedures.

var asCharUtility = Utility{Name: "fw_aschar", Code: `
cdef char fw_aschar(object s):
    cdef char* buf
    try:
        return <char>s
    except TypeError:
        pass
    try:
        buf = <char*>s
    except TypeError:
        s = s.encode('ASCII')
        buf = <char*>s
    if buf[0] == 0 or buf[1] != 0:
        return 0
    return buf[0]
`}

var copyShapeUtility = Utility{Name: "fw_copyshape", Code: `
cdef inline void fw_copyshape(fw_shape_t *target, np.intp_t *source, int ndim):
    cdef int i
    for i in range(ndim):
        target[i] = source[i]
`}

var asFortranArrayUtility = Utility{Name: "fw_asfortranarray", Code: `
cdef object fw_asfortranarray(object value, int typenum, int ndim, bint copy):
    cdef int flags = np.NPY_F_CONTIGUOUS | np.NPY_FORCECAST
    if ndim <= 1:
        flags = flags | np.NPY_C_CONTIGUOUS
    if copy:
        flags = flags | np.NPY_ENSURECOPY
    result = np.PyArray_FROMANY(value, typenum, ndim, ndim, flags)
    return result, result
`}

// The lenient variant accepts any rank and squeezes or pads unit axes.
var asFortranArrayF2PyUtility = Utility{Name: "fw_asfortranarray_f2py", Code: `
cdef object fw_f2py_shape_coercion(object arr, int ndim):
    shape = [n for n in arr.shape if n != 1]
    if len(shape) > ndim:
        raise ValueError("array has %d non-unit dimensions, expected at most %d" % (len(shape), ndim))
    shape = shape + [1] * (ndim - len(shape))
    return arr.reshape(shape, order='F')

cdef object fw_asfortranarray(object value, int typenum, int ndim, bint copy):
    cdef int flags = np.NPY_F_CONTIGUOUS | np.NPY_FORCECAST
    if copy:
        flags = flags | np.NPY_ENSURECOPY
    result = np.PyArray_FROMANY(value, typenum, 0, 0, flags)
    if np.PyArray_NDIM(result) != ndim:
        result = fw_f2py_shape_coercion(result, ndim)
    return result, result
`}

var explicitShapeArrayUtility = Utility{Name: "fw_explicitshapearray", Code: `
cdef object fw_explicitshapearray(object value, int typenum, int ndim, object shape, bint copy):
    cdef np.npy_intp dims[32]
    cdef int i
    if value is None:
        for i in range(ndim):
            dims[i] = shape[i]
        result = np.PyArray_ZEROS(ndim, dims, typenum, 1)
        return result, result
    return fw_asfortranarray(value, typenum, ndim, copy)
`}

var ensureAlignedUtility = Utility{Name: "fw_ensurealigned", Code: `
cdef object fw_ensurealigned(np.ndarray arr, object orig, int alignment):
    cdef size_t addr = <size_t>np.PyArray_DATA(arr)
    if addr % alignment == 0:
        return arr, orig
    buf = np.empty(arr.nbytes + alignment, dtype=np.uint8)
    addr = <size_t>np.PyArray_DATA(buf)
    offset = (alignment - addr % alignment) % alignment
    result = buf[offset:offset + arr.nbytes].view(arr.dtype).reshape(arr.shape, order='F')
    result[...] = arr
    return result, result
`}
