// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// cockroachdb/errorsをベースに、検定エンジンのドメインエラー型と構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("stattest-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、GPUUnavailableWarningなどのカスタム警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	// zerologが設定されている場合は優先的に使用
	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	// フォールバック: 従来のハンドラ
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// GPUUnavailableWarning はGPUバックエンドが要求されたが利用できない場合に発生する警告です。
// 計算はCPUバックエンドにフォールバックして継続されます。
type GPUUnavailableWarning struct {
	Operation string
	Reason    string
}

func (w *GPUUnavailableWarning) Error() string {
	return fmt.Sprintf("GPU backend requested for %s but unavailable: %s. Falling back to CPU", w.Operation, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *GPUUnavailableWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Operation).
		Str("reason", w.Reason).
		Str("type", "GPUUnavailableWarning")
}

// NewGPUUnavailableWarning は新しいGPUUnavailableWarningを作成します。
func NewGPUUnavailableWarning(operation, reason string) *GPUUnavailableWarning {
	return &GPUUnavailableWarning{Operation: operation, Reason: reason}
}

// DataConversionWarning はデータの型が暗黙的に変換された場合に発生する警告です。
// カーネル行列はfloat32で保持されるため、float64特徴量からの変換時に精度が落ちる可能性があります。
type DataConversionWarning struct {
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{FromType: from, ToType: to, Reason: reason}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// KernelNotSetError はカーネルが未登録の状態で統計量の計算を呼び出した場合のエラーです。
type KernelNotSetError struct {
	Op string
}

func (e *KernelNotSetError) Error() string {
	return fmt.Sprintf("stattest: %s: no kernel is set. Call AddKernel() or SetKernel() first", e.Op)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *KernelNotSetError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("type", "KernelNotSetError")
}

// NewKernelNotSetError は新しいKernelNotSetErrorを作成し、スタックトレースを付与します。
func NewKernelNotSetError(op string) error {
	err := &KernelNotSetError{Op: op}
	return errors.WithStack(err)
}

// EmptyRegistryError はカーネルレジストリが空の状態で複数カーネル演算を呼び出した場合のエラーです。
// 共分散行列の推定やカーネル選択には少なくとも1つのカーネルが必要です。
type EmptyRegistryError struct {
	Op string
}

func (e *EmptyRegistryError) Error() string {
	return fmt.Sprintf("stattest: %s: kernel registry is empty. Register at least one kernel via AddKernel()", e.Op)
}

// NewEmptyRegistryError は新しいEmptyRegistryErrorを作成し、スタックトレースを付与します。
func NewEmptyRegistryError(op string) error {
	err := &EmptyRegistryError{Op: op}
	return errors.WithStack(err)
}

// PrecomputedTemplateError は事前計算済みカーネルをストリーミング評価のテンプレートとして
// 使用しようとした場合のエラーです。事前計算済みカーネルは新しいバーストに対して
// 再初期化できないため、テンプレートとしては利用できません。
type PrecomputedTemplateError struct {
	Slot int
}

func (e *PrecomputedTemplateError) Error() string {
	return fmt.Sprintf("stattest: precomputed kernel at slot %d cannot be used with streaming data. Provide a kernel that can be initialised on bursts", e.Slot)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *PrecomputedTemplateError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("slot", e.Slot).
		Str("type", "PrecomputedTemplateError")
}

// NewPrecomputedTemplateError は新しいPrecomputedTemplateErrorを作成し、スタックトレースを付与します。
func NewPrecomputedTemplateError(slot int) error {
	err := &PrecomputedTemplateError{Slot: slot}
	return errors.WithStack(err)
}

// UnsupportedMethodError は列挙値が既知のどの手法にも対応しない場合のエラーです。
type UnsupportedMethodError struct {
	Op     string
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("stattest: %s: unsupported method %q", e.Op, e.Method)
}

// NewUnsupportedMethodError は新しいUnsupportedMethodErrorを作成し、スタックトレースを付与します。
func NewUnsupportedMethodError(op, method string) error {
	err := &UnsupportedMethodError{Op: op, Method: method}
	return errors.WithStack(err)
}

// OptionConflictError は組み合わせ不可能なオプションが同時に指定された場合のエラーです。
// 例えば、重み付きカーネル選択は中央値ヒューリスティックと併用できません。
type OptionConflictError struct {
	Op       string
	Option   string
	Conflict string
}

func (e *OptionConflictError) Error() string {
	return fmt.Sprintf("stattest: %s: option %s cannot be combined with %s", e.Op, e.Option, e.Conflict)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *OptionConflictError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("option", e.Option).
		Str("conflict", e.Conflict).
		Str("type", "OptionConflictError")
}

// NewOptionConflictError は新しいOptionConflictErrorを作成し、スタックトレースを付与します。
func NewOptionConflictError(op, option, conflict string) error {
	err := &OptionConflictError{Op: op, Option: option, Conflict: conflict}
	return errors.WithStack(err)
}

// BlockShapeError はバースト内のブロック数が計算の前提条件を満たさない場合のエラーです。
// 共分散行列の推定ではブロックをペアにして差分を取るため、偶数個のブロックが必要です。
type BlockShapeError struct {
	Op        string
	NumBlocks int
}

func (e *BlockShapeError) Error() string {
	return fmt.Sprintf("stattest: %s: number of blocks per burst must be even, got %d", e.Op, e.NumBlocks)
}

// NewBlockShapeError は新しいBlockShapeErrorを作成し、スタックトレースを付与します。
func NewBlockShapeError(op string, numBlocks int) error {
	err := &BlockShapeError{Op: op, NumBlocks: numBlocks}
	return errors.WithStack(err)
}

// ComputationError はバースト内の特定ブロックでカーネル計算が失敗した場合のエラーです。
// メモリ不足が原因の場合は、バーストあたりのブロック数を減らすことで回避できる可能性があります。
type ComputationError struct {
	Block int
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("stattest: kernel computation failed for block %d: %v. Try using fewer blocks per burst", e.Block, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ComputationError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("block", e.Block).
		AnErr("cause", e.Err).
		Str("type", "ComputationError")
}

// NewComputationError は新しいComputationErrorを作成し、スタックトレースを付与します。
func NewComputationError(block int, err error) error {
	compErr := &ComputationError{Block: block, Err: err}
	return errors.WithStack(compErr)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("stattest: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
// `ValueError`よりも具体的なバリデーションロジックの失敗を示します。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("stattest: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
// 例えば、有意水準に負の数を渡した場合など。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("stattest: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	数値計算特有のエラー型
//
// ===========================================================================

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf、オーバーフロー、アンダーフローなどを検出します。
type NumericalInstabilityError struct {
	Operation string                 // 発生した操作（例: "statistic_finalize", "null_sampling"）
	Values    []float64              // 問題のある値
	Context   map[string]interface{} // デバッグ用の追加コンテキスト情報
	Replicate int                    // 発生したレプリケート番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("stattest: numerical instability detected in %s at replicate %d. Values: [%s]",
		e.Operation, e.Replicate, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, replicate int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Replicate: replicate,
		Context:   make(map[string]interface{}),
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
